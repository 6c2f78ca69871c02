package models

import "time"

// Summary artifact types.
const (
	SummaryTypePopular  = "popular"
	SummaryTypeCategory = "category"
	SummaryTypeLatest   = "latest"
)

// SummaryArtifactModel marks a post as the current AI-generated digest of a
// given type. The unique index on Type keeps at most one artifact per type:
// regeneration updates the referenced post in place instead of inserting a
// new one.
type SummaryArtifactModel struct {
	Base
	Type        string      `json:"type"         gorm:"uniqueIndex;not null"`
	PostID      string      `json:"post_id"      gorm:"type:char(36);index;not null"`
	Post        *PostModel  `json:"post,omitempty" gorm:"foreignKey:PostID"`
	GeneratedAt time.Time   `json:"generated_at"`
	SourceIDs   StringSlice `json:"source_ids"   gorm:"type:json;serializer:json"`
}

func (SummaryArtifactModel) TableName() string { return "summary_artifacts" }
