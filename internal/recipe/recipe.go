// Package recipe provides the recipe record shared by the API client, the
// view-model and the development backend.
// Field names on the wire are the German names the backend uses.
package recipe

import (
	"fmt"
	"strings"
)

// Recipe is one recipe record as returned by GET /api/v1/rezepte.
type Recipe struct {
	ID           int    `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string `json:"nameRezept" yaml:"name"`
	Instructions string `json:"anleitungRezept" yaml:"instructions"`
	Category     string `json:"kategorie" yaml:"category"`
	UserID       int    `json:"userId" yaml:"user_id"`
}

// CreateRequest is the POST body for a new recipe. It never carries an id;
// identity is assigned by the backend.
type CreateRequest struct {
	Name         string `json:"nameRezept"`
	Instructions string `json:"anleitungRezept"`
	Category     string `json:"kategorie,omitempty"`
	UserID       int    `json:"userId"`
}

// IsPersisted reports whether the backend has assigned an id.
func (r Recipe) IsPersisted() bool {
	return r.ID > 0
}

// OwnedBy reports whether the recipe belongs to userID.
func (r Recipe) OwnedBy(userID int) bool {
	return r.UserID == userID
}

// String returns a short one-line description.
func (r Recipe) String() string {
	if r.Category == "" {
		return fmt.Sprintf("#%d %s", r.ID, r.Name)
	}
	return fmt.Sprintf("#%d %s (%s)", r.ID, r.Name, r.Category)
}

// Validate checks the fields the backend requires on create.
func (c CreateRequest) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("recipe name must not be empty")
	}
	return nil
}

// FindByID returns the recipe with the given id.
func FindByID(recipes []Recipe, id int) (Recipe, bool) {
	for _, r := range recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}
