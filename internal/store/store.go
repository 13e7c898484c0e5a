package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"florist-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// unavailable wraps a driver failure into the Unavailable domain error so
// callers above the gateway see a single condition for all reachability
// problems.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, models.ErrUnavailable)
}

// FetchStores retrieves the retail store directory.
func (s *Store) FetchStores(ctx context.Context) ([]models.RetailStore, error) {
	var stores []models.RetailStore
	if err := s.db.SelectContext(ctx, &stores, "SELECT * FROM stores ORDER BY name"); err != nil {
		return nil, unavailable("fetch stores", err)
	}
	return stores, nil
}

// FetchFlorists retrieves all florist users. Users are reference data owned
// by the identity provider; this table is a read-only mirror.
func (s *Store) FetchFlorists(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users,
		"SELECT * FROM users WHERE role = $1 ORDER BY name", models.RoleFlorist)
	if err != nil {
		return nil, unavailable("fetch florists", err)
	}
	return users, nil
}

// FetchProducts retrieves catalog products, optionally limited to stores.
func (s *Store) FetchProducts(ctx context.Context, storeIDs []string) ([]models.Product, error) {
	query := "SELECT * FROM products"
	var args []interface{}
	if len(storeIDs) > 0 {
		var err error
		query, args, err = sqlx.In("SELECT * FROM products WHERE store_id IN (?)", storeIDs)
		if err != nil {
			return nil, err
		}
		query = s.db.Rebind(query)
	}
	query += " ORDER BY id"

	var products []models.Product
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, unavailable("fetch products", err)
	}
	return products, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("get product", err)
	}
	return &product, nil
}
