package category

// Category is a node in the catalog tree. Top-level categories have a nil
// parent and level 1.
type Category struct {
	ID       int    `json:"categoryId"`
	Name     string `json:"name"`
	ParentID *int   `json:"parentId"`
	Level    int    `json:"level"`
	Sort     int    `json:"sort"`
	IsActive bool   `json:"isActive"`
}
