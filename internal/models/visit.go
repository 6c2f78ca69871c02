package models

import "time"

// VisitModel accumulates view counters per post, one row per post.
// AIReferrals counts the subset of views classified as AI-referred,
// so ai_referrals <= views always holds.
type VisitModel struct {
	ID          uint      `json:"-"            gorm:"primaryKey;autoIncrement"`
	PostID      string    `json:"post_id"      gorm:"type:char(36);uniqueIndex;not null"`
	Views       int64     `json:"views"        gorm:"not null;default:0"`
	AIReferrals int64     `json:"ai_referrals" gorm:"not null;default:0"`
	LastUpdated time.Time `json:"last_updated" gorm:"index;not null"`
}

func (VisitModel) TableName() string { return "visits" }
