package summary

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/post"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/openai"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/apperr"
	"go.uber.org/zap"
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
		&models.VisitModel{},
		&models.SummaryArtifactModel{},
		&models.OptionModel{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	cfgSvc := settings.NewService(db)
	return NewService(db, cfgSvc, openai.New(zap.NewNop()), post.NewService(db, cfgSvc), zap.NewNop())
}

func seedPublishedPost(t *testing.T, db *gorm.DB, id, title, slug, categoryID string) {
	t.Helper()
	p := models.PostModel{
		Title:       title,
		Slug:        slug,
		Text:        "Body of " + title,
		IsPublished: true,
	}
	p.ID = id
	if categoryID != "" {
		p.CategoryID = &categoryID
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func TestShouldRegenerate(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		frequency string
		since     time.Duration
		want      bool
	}{
		{"daily too soon", settings.FrequencyDaily, 19 * time.Hour, false},
		{"daily due", settings.FrequencyDaily, 20 * time.Hour, true},
		{"weekly too soon", settings.FrequencyWeekly, 5 * 24 * time.Hour, false},
		{"weekly due", settings.FrequencyWeekly, 6 * 24 * time.Hour, true},
		{"monthly too soon", settings.FrequencyMonthly, 27 * 24 * time.Hour, false},
		{"monthly due", settings.FrequencyMonthly, 28 * 24 * time.Hour, true},
		{"unknown frequency uses daily gate", "hourly", 21 * time.Hour, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			last := now.Add(-tc.since)
			if got := ShouldRegenerate(tc.frequency, last, now); got != tc.want {
				t.Errorf("ShouldRegenerate(%q, -%v) = %v, want %v", tc.frequency, tc.since, got, tc.want)
			}
		})
	}
}

func TestShouldRegenerateZeroTimeAlwaysFires(t *testing.T) {
	if !ShouldRegenerate(settings.FrequencyMonthly, time.Time{}, time.Now()) {
		t.Error("zero last time must regenerate")
	}
}

func TestGenerateNoSources(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Generate(context.Background(), models.SummaryTypeLatest, "")
	if apperr.KindOf(err) != apperr.KindNoSources {
		t.Fatalf("kind = %q (err=%v), want %q", apperr.KindOf(err), err, apperr.KindNoSources)
	}
}

func TestGenerateInvalidCategory(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Generate(context.Background(), models.SummaryTypeCategory, "missing-cat")
	if apperr.KindOf(err) != apperr.KindInvalidCategory {
		t.Fatalf("kind = %q (err=%v), want %q", apperr.KindOf(err), err, apperr.KindInvalidCategory)
	}
}

func TestGenerateMissingCredentialAfterSourceSelection(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	seedPublishedPost(t, db, "p1", "First", "first", "")

	_, err := svc.Generate(context.Background(), models.SummaryTypeLatest, "")
	if apperr.KindOf(err) != apperr.KindMissingCredential {
		t.Fatalf("kind = %q (err=%v), want %q", apperr.KindOf(err), err, apperr.KindMissingCredential)
	}
}

func TestUpsertArtifactKeepsOneRowPerType(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	first, err := svc.upsertArtifact(models.SummaryTypePopular, "Popular Content Digest", "v1", []string{"a"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := svc.upsertArtifact(models.SummaryTypePopular, "Popular Content Digest", "v2", []string{"a", "b"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if first.PostID != second.PostID {
		t.Errorf("regeneration must reuse the digest post: %q vs %q", first.PostID, second.PostID)
	}

	var count int64
	db.Model(&models.SummaryArtifactModel{}).Where("type = ?", models.SummaryTypePopular).Count(&count)
	if count != 1 {
		t.Errorf("artifact rows = %d, want 1", count)
	}

	var post models.PostModel
	if err := db.First(&post, "id = ?", second.PostID).Error; err != nil {
		t.Fatalf("load digest post: %v", err)
	}
	if post.Text != "v2" {
		t.Errorf("digest text = %q, want the regenerated version", post.Text)
	}
	if !strings.HasPrefix(post.Slug, digestSlugPrefix) {
		t.Errorf("digest slug = %q", post.Slug)
	}
	if len(second.SourceIDs) != 2 {
		t.Errorf("source ids = %v", second.SourceIDs)
	}
}

func TestSelectSourcesExcludesDigestsAndDrafts(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	seedPublishedPost(t, db, "p1", "Real Post", "real-post", "")
	seedPublishedPost(t, db, "p2", "Old Digest", digestSlugPrefix+"latest", "")
	draft := models.PostModel{Title: "Draft", Slug: "draft", Text: "x", IsPublished: false}
	draft.ID = "p3"
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	cfg, err := settings.NewService(db).Get()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	sources, _, err := svc.selectSources(models.SummaryTypeLatest, "", cfg)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sources) != 1 || sources[0].ID != "p1" {
		t.Errorf("sources = %+v, want only the published non-digest post", sources)
	}
}

func TestBuildDigestPromptLayout(t *testing.T) {
	prompt := buildDigestPrompt(models.SummaryTypePopular, "My Blog", []source{
		{ID: "a", Title: "First", Excerpt: "About first", URL: "https://example.com/posts/first"},
		{ID: "b", Title: "Second", Excerpt: "About second", URL: "https://example.com/posts/second"},
	})

	for _, want := range []string{
		"My Blog",
		"Article 1: First\nExcerpt: About first\nURL: https://example.com/posts/first\n",
		"Article 2: Second\nExcerpt: About second\nURL: https://example.com/posts/second\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	in := strings.Repeat("word ", 60)
	out := truncateWords(in, 50)
	if got := len(strings.Fields(out)); got != 50 {
		t.Errorf("word count = %d, want 50", got)
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected ellipsis suffix, got %q", out[len(out)-10:])
	}

	if truncateWords("a b c", 50) != "a b c" {
		t.Error("short text must pass through unchanged")
	}
}
