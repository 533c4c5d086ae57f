package catalog

// ChangeEvent is published by the back-office whenever menu items or
// categories are created, updated, or removed. The search service consumes it
// to invalidate its caches; the payload's detail is informational.
type ChangeEvent struct {
	Action string `json:"action"` // created | updated | deleted
	Entity string `json:"entity"` // menu_item | category
	ID     int64  `json:"id"`
}
