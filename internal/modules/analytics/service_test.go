package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.PostModel{}, &models.VisitModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVisit(t *testing.T, db *gorm.DB, postID string, views, ai int64, at time.Time) {
	t.Helper()
	err := db.Create(&models.VisitModel{
		PostID:      postID,
		Views:       views,
		AIReferrals: ai,
		LastUpdated: at,
	}).Error
	if err != nil {
		t.Fatalf("seed visit %s: %v", postID, err)
	}
}

func seedPost(t *testing.T, db *gorm.DB, id, title, slug string) {
	t.Helper()
	p := models.PostModel{Title: title, Slug: slug, Text: title, IsPublished: true}
	p.ID = id
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func TestOverviewEmptyTable(t *testing.T) {
	svc := NewService(openTestDB(t))

	ov, err := svc.Overview()
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.TrackedPosts != 0 || ov.TotalViews != 0 || ov.TotalAIReferrals != 0 {
		t.Errorf("expected zero totals, got %+v", ov)
	}
	if ov.AIShare != 0 || ov.Trend != 0 {
		t.Errorf("expected zero ratios, got share=%v trend=%v", ov.AIShare, ov.Trend)
	}
}

func TestTopContentOrderingAndTieBreak(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	now := time.Now()

	seedPost(t, db, "a", "Post A", "post-a")
	seedPost(t, db, "b", "Post B", "post-b")
	seedPost(t, db, "c", "Post C", "post-c")
	seedPost(t, db, "d", "Post D", "post-d")
	seedVisit(t, db, "a", 100, 10, now)
	seedVisit(t, db, "b", 50, 5, now)
	seedVisit(t, db, "c", 80, 20, now)
	seedVisit(t, db, "d", 10, 10, now) // ties with "a" on ai_referrals

	items, err := svc.TopContent(3)
	if err != nil {
		t.Fatalf("top content: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}

	wantOrder := []string{"c", "a", "d"} // 20, then 10-tie broken by post id
	for i, want := range wantOrder {
		if items[i].PostID != want {
			t.Errorf("items[%d].PostID = %q, want %q", i, items[i].PostID, want)
		}
	}
	if items[1].Title != "Post A" {
		t.Errorf("title join failed, got %q", items[1].Title)
	}
}

func TestTopContentNonPositiveLimit(t *testing.T) {
	svc := NewService(openTestDB(t))
	items, err := svc.TopContent(0)
	if err != nil {
		t.Fatalf("top content: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty result, got %d items", len(items))
	}
}

func TestMonthOverMonthTrend(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		current int64
		prior   int64
		want    float64
	}{
		{"growth", 30, 20, 50},
		{"decline", 10, 20, -50},
		{"flat", 20, 20, 0},
		{"zero prior", 30, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)
			svc := NewService(db)

			if tc.current > 0 {
				seedVisit(t, db, "cur", tc.current, tc.current, now.AddDate(0, 0, -1))
			}
			if tc.prior > 0 {
				seedVisit(t, db, "prev", tc.prior, tc.prior, now.AddDate(0, -1, 0))
			}

			got, err := svc.monthOverMonthTrendAt(now)
			if err != nil {
				t.Fatalf("trend: %v", err)
			}
			if got != tc.want {
				t.Errorf("trend = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTotalAIReferrals(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	now := time.Now()

	seedVisit(t, db, "a", 10, 3, now)
	seedVisit(t, db, "b", 20, 7, now)

	total, err := svc.TotalAIReferrals()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
}
