package db_models

// Tag categories are the three facets a user can self-describe with.
const (
	CategoryInterest  = "interest"
	CategoryContext   = "context"
	CategoryIntention = "intention"
)

// Tag is static reference data managed by administrators.
type Tag struct {
	BaseModel
	Name     string `gorm:"unique"`
	Category string `gorm:"index"`
	Users    []User `gorm:"many2many:user_tags"`
}
