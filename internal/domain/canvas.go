package domain

// CanvasPosition pins a bookmark to a point on a collection's canvas.
// A bookmark has at most one position per collection.
type CanvasPosition struct {
	BookmarkID   string  `json:"bookmark_id"`
	CollectionID string  `json:"collection_id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// CanvasConnection is a directed, optionally labeled edge between two
// bookmarks on the same collection canvas.
type CanvasConnection struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`
	FromID       string `json:"from"`
	ToID         string `json:"to"`
	Label        string `json:"label,omitempty"`
}

// CanvasLayout is the full diagram state for one collection canvas.
type CanvasLayout struct {
	CollectionID string             `json:"collection_id"`
	Positions    []CanvasPosition   `json:"positions"`
	Connections  []CanvasConnection `json:"connections"`
}
