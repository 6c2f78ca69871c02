// Package analytics answers read-only questions over the visit counters:
// totals, month-over-month trend and top-N rankings for the dashboard.
package analytics

import (
	"time"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/apperr"
	"gorm.io/gorm"
)

// TopItem is one row of the AI-referral ranking.
type TopItem struct {
	PostID      string `json:"post_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Views       int64  `json:"views"`
	AIReferrals int64  `json:"ai_referrals"`
}

// Overview carries the dashboard headline numbers.
type Overview struct {
	TrackedPosts     int64   `json:"tracked_posts"`
	TotalViews       int64   `json:"total_views"`
	TotalAIReferrals int64   `json:"total_ai_referrals"`
	AIShare          float64 `json:"ai_share"` // percent of views that are AI-referred
	Trend            float64 `json:"trend"`    // month-over-month percent change
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// TotalAIReferrals returns the sum of AI referrals over all records, 0 when
// nothing has been tracked.
func (s *Service) TotalAIReferrals() (int64, error) {
	return s.sumAIReferrals(nil, nil)
}

// TopContent returns up to n posts ranked by AI referrals descending, ties
// broken by post id ascending so repeated calls are stable.
func (s *Service) TopContent(n int) ([]TopItem, error) {
	if n < 1 {
		return []TopItem{}, nil
	}

	items := []TopItem{}
	err := s.db.Model(&models.VisitModel{}).
		Select("visits.post_id, visits.views, visits.ai_referrals, posts.title, posts.slug").
		Joins("LEFT JOIN posts ON posts.id = visits.post_id").
		Order("visits.ai_referrals DESC, visits.post_id ASC").
		Limit(n).
		Scan(&items).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

// MonthOverMonthTrend compares AI referrals recorded in the current calendar
// month against the prior one, as a percent change. A zero prior month
// yields 0 rather than a division error.
func (s *Service) MonthOverMonthTrend() (float64, error) {
	return s.monthOverMonthTrendAt(time.Now())
}

func (s *Service) monthOverMonthTrendAt(now time.Time) (float64, error) {
	curStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := curStart.AddDate(0, -1, 0)

	cur, err := s.sumAIReferrals(&curStart, &now)
	if err != nil {
		return 0, err
	}
	prev, err := s.sumAIReferrals(&prevStart, &curStart)
	if err != nil {
		return 0, err
	}

	if prev == 0 {
		return 0, nil
	}
	return float64(cur-prev) / float64(prev) * 100, nil
}

// Overview aggregates the headline numbers in one call.
func (s *Service) Overview() (*Overview, error) {
	var out Overview

	if err := s.db.Model(&models.VisitModel{}).Count(&out.TrackedPosts).Error; err != nil {
		return nil, storageErr(err)
	}

	var totals struct {
		Views       int64
		AIReferrals int64
	}
	if err := s.db.Model(&models.VisitModel{}).
		Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(ai_referrals), 0) AS ai_referrals").
		Scan(&totals).Error; err != nil {
		return nil, storageErr(err)
	}
	out.TotalViews = totals.Views
	out.TotalAIReferrals = totals.AIReferrals
	if out.TotalViews > 0 {
		out.AIShare = float64(out.TotalAIReferrals) / float64(out.TotalViews) * 100
	}

	trend, err := s.MonthOverMonthTrend()
	if err != nil {
		return nil, err
	}
	out.Trend = trend
	return &out, nil
}

func (s *Service) sumAIReferrals(from, to *time.Time) (int64, error) {
	tx := s.db.Model(&models.VisitModel{}).Select("COALESCE(SUM(ai_referrals), 0)")
	if from != nil {
		tx = tx.Where("last_updated >= ?", *from)
	}
	if to != nil {
		tx = tx.Where("last_updated < ?", *to)
	}

	var total int64
	if err := tx.Scan(&total).Error; err != nil {
		return 0, storageErr(err)
	}
	return total, nil
}

func storageErr(err error) error {
	return apperr.New(apperr.KindStorageUnavailable, err.Error())
}
