package recipe

import "strings"

// Filter returns the recipes whose name contains term. Matching is
// case-sensitive and considers the name only. An empty term returns recipes
// itself, preserving order.
func Filter(recipes []Recipe, term string) []Recipe {
	if term == "" {
		return recipes
	}
	return FilterFunc(recipes, func(r Recipe) bool {
		return strings.Contains(r.Name, term)
	})
}

// FilterFunc returns a new slice with the recipes for which keep returns true,
// in their original order. The input is never modified.
func FilterFunc(recipes []Recipe, keep func(Recipe) bool) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
