package ranking

import (
	"sort"
	"strings"

	"florist-service/internal/labels"
	"florist-service/internal/models"
)

// Filters narrows the worklist before ranking. Zero values pass everything.
type Filters struct {
	Status      string
	StoreIDs    []string
	Difficulty  string
	ProductType string
	Query       string
}

// Rank filters orders and sorts them into the worklist for the requesting
// user. Pure function of its inputs: it copies the input slice and the sort is
// stable, so repeated calls on unchanged input yield identical sequences.
//
// Sort keys, each a tie-break for the previous:
//  1. ownership tier: current user's orders, then unassigned, then others'
//  2. timeslot start in minutes since midnight; unparseable slots last
//  3. product name, case-insensitive
//  4. difficulty label priority; unknown last
//  5. product-type label priority; unknown last
func Rank(orders []models.Order, user models.User, f Filters, reg *labels.Registry) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if matches(o, f) {
			out = append(out, o)
		}
	}

	type ranked struct {
		order models.Order
		key   sortKey
	}
	items := make([]ranked, len(out))
	for i, o := range out {
		minutes, ok := parseTimeslot(o.Timeslot)
		items[i] = ranked{
			order: o,
			key: sortKey{
				tier:        ownershipTier(o, user.ID),
				minutes:     minutes,
				parseable:   ok,
				product:     strings.ToLower(o.ProductName),
				difficulty:  reg.Resolve(models.LabelCategoryDifficulty, o.DifficultyLabel),
				productType: reg.Resolve(models.LabelCategoryProductType, o.ProductTypeLabel),
			},
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key.less(items[j].key)
	})

	for i, it := range items {
		out[i] = it.order
	}
	return out
}

type sortKey struct {
	tier        int
	minutes     int
	parseable   bool
	product     string
	difficulty  labels.Priority
	productType labels.Priority
}

func (a sortKey) less(b sortKey) bool {
	if a.tier != b.tier {
		return a.tier < b.tier
	}
	if a.parseable != b.parseable {
		return a.parseable
	}
	if a.parseable && a.minutes != b.minutes {
		return a.minutes < b.minutes
	}
	if a.product != b.product {
		return a.product < b.product
	}
	if a.difficulty != b.difficulty {
		return a.difficulty.Less(b.difficulty)
	}
	if a.productType != b.productType {
		return a.productType.Less(b.productType)
	}
	return false
}

// ownershipTier buckets an order relative to the requesting user:
// 0 = assigned to them, 1 = unassigned, 2 = assigned to someone else.
func ownershipTier(o models.Order, userID string) int {
	if o.AssignedFloristID == nil {
		return 1
	}
	if *o.AssignedFloristID == userID {
		return 0
	}
	return 2
}

func matches(o models.Order, f Filters) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if len(f.StoreIDs) > 0 && !containsString(f.StoreIDs, o.StoreID) {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(o.DifficultyLabel, f.Difficulty) {
		return false
	}
	if f.ProductType != "" && !strings.EqualFold(o.ProductTypeLabel, f.ProductType) {
		return false
	}
	return matchesQuery(o, f.Query)
}

// matchesQuery does a case-insensitive substring match against every
// searchable field. A bad record never blocks the worklist; there is nothing
// to reject here, only fields that fail to match.
func matchesQuery(o models.Order, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{
		o.ID,
		o.ProductName,
		o.Variant,
		o.Remarks,
		o.Customizations,
		o.DifficultyLabel,
		o.ProductTypeLabel,
		o.Timeslot,
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
