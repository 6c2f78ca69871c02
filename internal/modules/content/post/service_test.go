package post

import (
	"fmt"
	"testing"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
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
	err = db.AutoMigrate(
		&models.CategoryModel{},
		&models.PostModel{},
		&models.OptionModel{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPermalink(t *testing.T) {
	db := openTestDB(t)
	cfgSvc := settings.NewService(db)
	svc := NewService(db, cfgSvc)

	p := &models.PostModel{Slug: "hello-world"}
	if got := svc.Permalink(p); got != "/posts/hello-world" {
		t.Errorf("permalink without site url = %q", got)
	}

	url := "https://example.com"
	if _, err := cfgSvc.Update(settings.Patch{SiteURL: &url}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got := svc.Permalink(p); got != "https://example.com/posts/hello-world" {
		t.Errorf("permalink = %q", got)
	}
}

func TestSetSummary(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, settings.NewService(db))

	p := models.PostModel{Title: "A Post", Slug: "a-post", Text: "body"}
	p.ID = "post-1"
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.SetSummary("post-1", "A short summary."); err != nil {
		t.Fatalf("set summary: %v", err)
	}

	var got models.PostModel
	if err := db.First(&got, "id = ?", "post-1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Summary != "A short summary." {
		t.Errorf("summary = %q", got.Summary)
	}
}
