package domain

// Category is one node of the catalog category forest. ParentID is nil for
// roots; the set is loaded once per pipeline run and read-only afterwards.
type Category struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	ParentID *int   `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Name     string `gorm:"column:name;type:text;not null" json:"name"`
}

func (Category) TableName() string { return "category" }
