package ranking

import (
	"testing"

	"florist-service/internal/labels"
	"florist-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func order(id string, mutate func(*models.Order)) models.Order {
	o := models.Order{
		ID:          id,
		StoreID:     "store-1",
		ProductName: "Rose Bouquet",
		Timeslot:    "9:00 AM - 11:00 AM",
		Status:      models.OrderStatusPending,
	}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

var me = models.User{ID: "flo-1", Name: "Sam", Role: models.RoleFlorist}

func emptyRegistry() *labels.Registry {
	return labels.NewRegistry(nil)
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestRankOwnershipTierBeatsTimeslot(t *testing.T) {
	// A: 9:00 AM, unassigned. B: 9:00 AM, mine. C: 8:30 AM, another
	// florist's. Ownership tier dominates, so C's earlier slot does not
	// lift it above the unassigned order.
	a := order("A", func(o *models.Order) {
		o.Timeslot = "9:00 AM"
		o.ProductName = "Rose Bouquet"
	})
	b := order("B", func(o *models.Order) {
		o.Timeslot = "9:00 AM"
		o.ProductName = "Lily Vase"
		o.Status = models.OrderStatusAssigned
		o.AssignedFloristID = strPtr("flo-1")
	})
	c := order("C", func(o *models.Order) {
		o.Timeslot = "8:30 AM"
		o.ProductName = "Tulip Box"
		o.Status = models.OrderStatusAssigned
		o.AssignedFloristID = strPtr("flo-2")
	})

	ranked := Rank([]models.Order{a, b, c}, me, Filters{}, emptyRegistry())
	assert.Equal(t, []string{"B", "A", "C"}, ids(ranked))
}

func TestRankTimeslotWithinTier(t *testing.T) {
	early := order("early", func(o *models.Order) { o.Timeslot = "8:30 AM - 10:00 AM" })
	late := order("late", func(o *models.Order) { o.Timeslot = "2:00 PM - 4:00 PM" })
	afternoon := order("afternoon", func(o *models.Order) { o.Timeslot = "12:15 PM" })

	ranked := Rank([]models.Order{late, afternoon, early}, me, Filters{}, emptyRegistry())
	assert.Equal(t, []string{"early", "afternoon", "late"}, ids(ranked))
}

func TestRankUnparseableTimeslotsSortLastInInputOrder(t *testing.T) {
	bad1 := order("bad1", func(o *models.Order) { o.Timeslot = "anytime" })
	bad2 := order("bad2", func(o *models.Order) { o.Timeslot = "" })
	good := order("good", func(o *models.Order) { o.Timeslot = "11:00 PM" })

	ranked := Rank([]models.Order{bad1, bad2, good}, me, Filters{}, emptyRegistry())
	assert.Equal(t, []string{"good", "bad1", "bad2"}, ids(ranked))
}

func TestRankProductNameBreaksTimeslotTies(t *testing.T) {
	rose := order("rose", func(o *models.Order) { o.ProductName = "rose bouquet" })
	lily := order("lily", func(o *models.Order) { o.ProductName = "Lily Vase" })

	ranked := Rank([]models.Order{rose, lily}, me, Filters{}, emptyRegistry())
	assert.Equal(t, []string{"lily", "rose"}, ids(ranked))
}

func TestRankLabelPriorityBreaksProductTies(t *testing.T) {
	reg := labels.NewRegistry([]models.ProductLabel{
		{ID: 1, Name: "Hard", Category: models.LabelCategoryDifficulty, Priority: 0},
		{ID: 2, Name: "Easy", Category: models.LabelCategoryDifficulty, Priority: 5},
	})

	easy := order("easy", func(o *models.Order) { o.DifficultyLabel = "Easy" })
	hard := order("hard", func(o *models.Order) { o.DifficultyLabel = "Hard" })
	unlabeled := order("unlabeled", nil)
	unknown := order("unknown", func(o *models.Order) { o.DifficultyLabel = "Retired" })

	ranked := Rank([]models.Order{easy, unlabeled, unknown, hard}, me, Filters{}, reg)

	// Known priorities ascending first; no label and unregistered label
	// fall to the back, keeping input order.
	assert.Equal(t, []string{"hard", "easy", "unlabeled", "unknown"}, ids(ranked))
}

func TestRankProductTypeIsFinalTieBreak(t *testing.T) {
	reg := labels.NewRegistry([]models.ProductLabel{
		{ID: 1, Name: "Bouquet", Category: models.LabelCategoryProductType, Priority: 1},
		{ID: 2, Name: "Vase", Category: models.LabelCategoryProductType, Priority: 2},
	})

	vase := order("vase", func(o *models.Order) { o.ProductTypeLabel = "Vase" })
	bouquet := order("bouquet", func(o *models.Order) { o.ProductTypeLabel = "Bouquet" })

	ranked := Rank([]models.Order{vase, bouquet}, me, Filters{}, reg)
	assert.Equal(t, []string{"bouquet", "vase"}, ids(ranked))
}

func TestRankIsDeterministic(t *testing.T) {
	input := []models.Order{
		order("a", func(o *models.Order) { o.Timeslot = "anytime" }),
		order("b", func(o *models.Order) { o.Timeslot = "anytime" }),
		order("c", nil),
		order("d", nil),
	}

	first := Rank(input, me, Filters{}, emptyRegistry())
	second := Rank(input, me, Filters{}, emptyRegistry())
	assert.Equal(t, ids(first), ids(second))

	// Full ties keep input order.
	assert.Equal(t, []string{"c", "d", "a", "b"}, ids(first))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	a := order("a", func(o *models.Order) { o.Timeslot = "3:00 PM" })
	b := order("b", func(o *models.Order) { o.Timeslot = "9:00 AM" })
	input := []models.Order{a, b}

	_ = Rank(input, me, Filters{}, emptyRegistry())
	require.Equal(t, "a", input[0].ID)
	require.Equal(t, "b", input[1].ID)
}

func TestFilterStatus(t *testing.T) {
	pending := order("pending", nil)
	assigned := order("assigned", func(o *models.Order) {
		o.Status = models.OrderStatusAssigned
		o.AssignedFloristID = strPtr("flo-2")
	})

	ranked := Rank([]models.Order{pending, assigned}, me,
		Filters{Status: models.OrderStatusPending}, emptyRegistry())
	assert.Equal(t, []string{"pending"}, ids(ranked))
}

func TestFilterStores(t *testing.T) {
	one := order("one", func(o *models.Order) { o.StoreID = "store-1" })
	two := order("two", func(o *models.Order) { o.StoreID = "store-2" })
	three := order("three", func(o *models.Order) { o.StoreID = "store-3" })

	ranked := Rank([]models.Order{one, two, three}, me,
		Filters{StoreIDs: []string{"store-1", "store-3"}}, emptyRegistry())
	assert.ElementsMatch(t, []string{"one", "three"}, ids(ranked))
}

func TestFilterLabels(t *testing.T) {
	easy := order("easy", func(o *models.Order) { o.DifficultyLabel = "Easy" })
	hard := order("hard", func(o *models.Order) { o.DifficultyLabel = "Hard" })

	ranked := Rank([]models.Order{easy, hard}, me,
		Filters{Difficulty: "easy"}, emptyRegistry())
	assert.Equal(t, []string{"easy"}, ids(ranked))
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	rose := order("rose", func(o *models.Order) { o.ProductName = "Rose Bouquet" })
	lily := order("lily", func(o *models.Order) {
		o.ProductName = "Lily Vase"
		o.Remarks = "add a single ROSE stem"
	})
	tulip := order("tulip", func(o *models.Order) { o.ProductName = "Tulip Box" })

	ranked := Rank([]models.Order{rose, lily, tulip}, me,
		Filters{Query: "rose"}, emptyRegistry())
	assert.ElementsMatch(t, []string{"rose", "lily"}, ids(ranked))

	byID := Rank([]models.Order{rose, lily, tulip}, me,
		Filters{Query: "TULIP"}, emptyRegistry())
	assert.Equal(t, []string{"tulip"}, ids(byID))

	byTimeslot := Rank([]models.Order{rose}, me,
		Filters{Query: "9:00 am"}, emptyRegistry())
	assert.Len(t, byTimeslot, 1)
}

func TestSearchEmptyQueryPassesEverything(t *testing.T) {
	ranked := Rank([]models.Order{order("a", nil), order("b", nil)}, me,
		Filters{Query: "   "}, emptyRegistry())
	assert.Len(t, ranked, 2)
}
