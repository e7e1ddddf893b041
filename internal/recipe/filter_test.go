package recipe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sampleRecipes() []Recipe {
	return []Recipe{
		{ID: 1, Name: "Spaghetti", Instructions: "Kochen", Category: "Hauptgericht", UserID: 123},
		{ID: 2, Name: "Salat", Instructions: "Schneiden", Category: "Vorspeise", UserID: 123},
		{ID: 3, Name: "Spaghetti Carbonara", Instructions: "Kochen", Category: "Hauptgericht", UserID: 123},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []int
	}{
		{name: "empty term keeps everything", term: "", want: []int{1, 2, 3}},
		{name: "exact name", term: "Salat", want: []int{2}},
		{name: "substring", term: "Carbo", want: []int{3}},
		{name: "prefix shared by two", term: "Spaghetti", want: []int{1, 3}},
		{name: "case sensitive", term: "salat", want: []int{}},
		{name: "category is not searched", term: "Vorspeise", want: []int{}},
		{name: "instructions are not searched", term: "Kochen", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleRecipes(), tt.term)
			ids := make([]int, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("Filter(%q) ids mismatch (-want +got):\n%s", tt.term, diff)
			}
		})
	}
}

func TestFilter_ExampleScenario(t *testing.T) {
	store := []Recipe{
		{ID: 1, Name: "Spaghetti", UserID: 123},
		{ID: 2, Name: "Salat", UserID: 123},
	}

	got := Filter(store, "Spaghetti")

	if diff := cmp.Diff([]Recipe{{ID: 1, Name: "Spaghetti", UserID: 123}}, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	in := sampleRecipes()
	before := sampleRecipes()

	out := Filter(in, "Salat")
	out[0].Name = "changed"

	assert.Equal(t, before, in)
}

func TestFilter_EmptyTermReturnsSameOrder(t *testing.T) {
	in := sampleRecipes()
	assert.Equal(t, in, Filter(in, ""))
}

func TestFilter_NilInput(t *testing.T) {
	assert.Empty(t, Filter(nil, "x"))
	assert.Nil(t, Filter(nil, ""))
}

func TestFilterFunc(t *testing.T) {
	got := FilterFunc(sampleRecipes(), func(r Recipe) bool { return r.Category == "Hauptgericht" })
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}

func TestFindByID(t *testing.T) {
	r, ok := FindByID(sampleRecipes(), 2)
	assert.True(t, ok)
	assert.Equal(t, "Salat", r.Name)

	_, ok = FindByID(sampleRecipes(), 99)
	assert.False(t, ok)
}

func TestCreateRequestValidate(t *testing.T) {
	assert.NoError(t, CreateRequest{Name: "Burger"}.Validate())
	assert.Error(t, CreateRequest{Name: "   "}.Validate())
	assert.Error(t, CreateRequest{}.Validate())
}

func TestRecipeString(t *testing.T) {
	assert.Equal(t, "#1 Pizza", Recipe{ID: 1, Name: "Pizza"}.String())
	assert.Equal(t, "#2 Pizza (Hauptgericht)", Recipe{ID: 2, Name: "Pizza", Category: "Hauptgericht"}.String())
	assert.True(t, Recipe{ID: 2}.IsPersisted())
	assert.False(t, Recipe{}.IsPersisted())
	assert.True(t, Recipe{UserID: 5}.OwnedBy(5))
}
