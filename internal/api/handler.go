package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"florist-service/internal/models"
	"florist-service/internal/ranking"
	"florist-service/internal/service"
	"florist-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreDirectory supplies retail store and product reference data for the
// worklist filters and label management.
type StoreDirectory interface {
	FetchStores(ctx context.Context) ([]models.RetailStore, error)
	FetchProducts(ctx context.Context, storeIDs []string) ([]models.Product, error)
}

// Handler contains HTTP handlers
type Handler struct {
	workflow  *service.Workflow
	worklist  *service.WorklistService
	labels    *service.LabelService
	analytics *service.AnalyticsService
	stores    StoreDirectory
	location  *time.Location
}

// NewHandler creates a new HTTP handler
func NewHandler(
	workflow *service.Workflow,
	worklist *service.WorklistService,
	labels *service.LabelService,
	analytics *service.AnalyticsService,
	stores StoreDirectory,
	loc *time.Location,
) *Handler {
	return &Handler{
		workflow:  workflow,
		worklist:  worklist,
		labels:    labels,
		analytics: analytics,
		stores:    stores,
		location:  loc,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(identityMiddleware())
	{
		v1.GET("/orders", h.getWorklist)
		v1.PATCH("/orders/:id/assign", h.assignOrder)
		v1.PATCH("/orders/:id/complete", h.completeOrder)
		v1.PATCH("/orders/:id/unassign", h.unassignOrder)
		v1.PATCH("/orders/:id", h.updateRemarks)
		v1.GET("/analytics", h.getAnalytics)
		v1.POST("/labels", h.upsertLabel)
		v1.GET("/labels", h.listLabels)
		v1.GET("/stores", h.listStores)
		v1.GET("/products", h.listProducts)
	}
}

// identityMiddleware materializes the authenticated user from the trusted
// headers set by the identity provider in front of this service.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := models.User{
			ID:   c.GetHeader("X-User-ID"),
			Name: c.GetHeader("X-User-Name"),
			Role: strings.ToUpper(c.GetHeader("X-User-Role")),
		}

		if user.ID == "" || (user.Role != models.RoleAdmin && user.Role != models.RoleFlorist) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid identity headers",
			})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet("user").(models.User)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getWorklist handles GET /orders?date=&store=&status=&difficulty=&product_type=&q=
func (h *Handler) getWorklist(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().In(h.location).Format("2006-01-02")
	}

	status, ok := statusFilter(c.Query("status"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	filters := ranking.Filters{
		Status:      status,
		StoreIDs:    multiValue(c, "store"),
		Difficulty:  c.Query("difficulty"),
		ProductType: c.Query("product_type"),
		Query:       c.Query("q"),
	}

	orders, err := h.worklist.Worklist(c.Request.Context(), currentUser(c), date, filters)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"orders": orders,
	})
}

// assignOrder handles PATCH /orders/:id/assign. A florist claims the order
// for themselves; an admin assigns or reassigns any florist.
func (h *Handler) assignOrder(c *gin.Context) {
	var req struct {
		FloristID string `json:"florist_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user := currentUser(c)
	orderID := c.Param("id")

	var order *models.Order
	var err error
	if user.Role == models.RoleAdmin {
		if req.FloristID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "florist_id is required"})
			return
		}
		order, err = h.workflow.Assign(c.Request.Context(), orderID, req.FloristID, user)
	} else {
		if req.FloristID != "" && req.FloristID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Florists may only claim orders for themselves"})
			return
		}
		order, err = h.workflow.AssignToSelf(c.Request.Context(), orderID, user.ID)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// completeOrder handles PATCH /orders/:id/complete
func (h *Handler) completeOrder(c *gin.Context) {
	order, err := h.workflow.Complete(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// unassignOrder handles PATCH /orders/:id/unassign
func (h *Handler) unassignOrder(c *gin.Context) {
	order, err := h.workflow.Unassign(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// updateRemarks handles PATCH /orders/:id
func (h *Handler) updateRemarks(c *gin.Context) {
	var req struct {
		Remarks *string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Remarks == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.workflow.UpdateRemarks(c.Request.Context(), c.Param("id"), *req.Remarks, currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// getAnalytics handles GET /analytics?timeframe=&store=
func (h *Handler) getAnalytics(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "today")

	stats, err := h.analytics.Stats(c.Request.Context(), timeframe, multiValue(c, "store"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe": timeframe,
		"stats":     stats,
	})
}

// upsertLabel handles POST /labels
func (h *Handler) upsertLabel(c *gin.Context) {
	var label models.ProductLabel
	if err := c.ShouldBindJSON(&label); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.labels.Upsert(c.Request.Context(), &label, currentUser(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, label)
}

// listLabels handles GET /labels?category=
func (h *Handler) listLabels(c *gin.Context) {
	var (
		rows []models.ProductLabel
		err  error
	)
	if category := c.Query("category"); category != "" {
		rows, err = h.labels.ListByCategory(c.Request.Context(), category)
	} else {
		rows, err = h.labels.List(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": rows})
}

// listStores handles GET /stores
func (h *Handler) listStores(c *gin.Context) {
	stores, err := h.stores.FetchStores(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// listProducts handles GET /products?store=
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.stores.FetchProducts(c.Request.Context(), multiValue(c, "store"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// statusFilter maps the query value to an order status. Empty and "all" pass
// everything.
func statusFilter(v string) (string, bool) {
	switch strings.ToLower(v) {
	case "", "all":
		return "", true
	case "pending":
		return models.OrderStatusPending, true
	case "assigned":
		return models.OrderStatusAssigned, true
	case "completed":
		return models.OrderStatusCompleted, true
	}
	return "", false
}

// multiValue collects a query parameter that may repeat or hold a
// comma-separated list.
func multiValue(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// abortWithError maps the domain error taxonomy to HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
