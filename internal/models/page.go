package models

// PageModel is a static page (e.g. About, Contact).
type PageModel struct {
	Base
	Title string `json:"title" gorm:"not null"`
	Text  string `json:"text"  gorm:"type:longtext"`
	Slug  string `json:"slug"  gorm:"uniqueIndex;not null"`
	Order int    `json:"order" gorm:"column:order_num;default:0"`
}

func (PageModel) TableName() string { return "pages" }
