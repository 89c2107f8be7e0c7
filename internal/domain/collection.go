package domain

import "time"

// Collection is a user-owned named bucket for organizing bookmarks.
// Collections form a forest per user via the optional ParentID, which
// must reference a collection owned by the same user.
type Collection struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	ParentID      string    `json:"parent_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	BookmarkCount int       `json:"bookmark_count"`

	// Children is populated by the tree-listing operation only.
	Children []*Collection `json:"children"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new collection.
func (c *Collection) InitTimestamps() {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (c *Collection) Touch() {
	c.UpdatedAt = time.Now()
}

// IsRoot returns true if the collection has no parent.
func (c *Collection) IsRoot() bool {
	return c.ParentID == ""
}

// DefaultCollectionName is created for every new user at signup.
const DefaultCollectionName = "Unsorted"

// BuildCollectionTree arranges a flat, name-ordered collection list into a
// forest. Children inherit the input ordering, so a list sorted
// alphabetically stays alphabetical at every level. Collections whose
// parent is missing from the input are lifted to the root rather than
// dropped, which keeps orphans visible if a parent row ever disappears.
func BuildCollectionTree(flat []*Collection) []*Collection {
	indexed := make(map[string]*Collection, len(flat))
	for _, c := range flat {
		c.Children = []*Collection{}
		indexed[c.ID] = c
	}

	var roots []*Collection
	for _, c := range flat {
		if c.ParentID != "" {
			if parent, ok := indexed[c.ParentID]; ok {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	if roots == nil {
		roots = []*Collection{}
	}
	return roots
}
