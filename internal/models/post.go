package models

// PostModel is a blog post.
type PostModel struct {
	Base
	Title       string         `json:"title"        gorm:"not null"`
	Text        string         `json:"text"         gorm:"type:longtext"`
	Slug        string         `json:"slug"         gorm:"uniqueIndex;not null"`
	Summary     string         `json:"summary"      gorm:"type:text"`
	Excerpt     string         `json:"excerpt"      gorm:"type:text"`
	CategoryID  *string        `json:"category_id"  gorm:"index"`
	Category    *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	IsPublished bool           `json:"is_published" gorm:"default:false;index"`
	Tags        StringSlice    `json:"tags"         gorm:"type:json;serializer:json"`
}

func (PostModel) TableName() string { return "posts" }
