// Package summary generates AI digests of site content and short per-post
// summaries, and keeps exactly one digest artifact per type.
package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/content/post"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/openai"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/apperr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const digestSlugPrefix = "ai-digest-"

// Regeneration gates. Each is slightly under its nominal period so a
// scheduled run that drifts a little early still fires.
const (
	dailyGate   = 20 * time.Hour
	weeklyGate  = 6 * 24 * time.Hour
	monthlyGate = 28 * 24 * time.Hour
)

var digestTitles = map[string]string{
	models.SummaryTypePopular:  "Popular Content Digest",
	models.SummaryTypeCategory: "Category Digest",
	models.SummaryTypeLatest:   "Latest Content Digest",
}

type Service struct {
	db     *gorm.DB
	cfgSvc *settings.Service
	ai     *openai.Client
	posts  *post.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfgSvc *settings.Service, ai *openai.Client, posts *post.Service, logger *zap.Logger) *Service {
	return &Service{db: db, cfgSvc: cfgSvc, ai: ai, posts: posts, logger: logger.Named("summary")}
}

// Generate builds the digest of the given type, calls the model and
// stores the result. The digest lives in a regular post; the artifact
// row records which post that is, so regeneration rewrites the same
// post instead of creating a new one.
func (s *Service) Generate(ctx context.Context, typ, categoryID string) (*models.SummaryArtifactModel, error) {
	if _, ok := digestTitles[typ]; !ok {
		return nil, apperr.New(apperr.KindNoSources, "unknown summary type: "+typ)
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}

	sources, title, err := s.selectSources(typ, categoryID, cfg)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, apperr.New(apperr.KindNoSources, "no published posts to summarize")
	}

	text, err := s.ai.Generate(ctx, openai.GenerateParams{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   digestMaxTokens,
		System:      digestSystemPrompt,
		Prompt:      buildDigestPrompt(typ, cfg.SiteName, sources),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = src.ID
	}
	return s.upsertArtifact(typ, title, text, ids)
}

// SummarizePost fills the short summary of a single post when it does
// not have one yet. Digest posts are never summarized.
func (s *Service) SummarizePost(ctx context.Context, postID string) error {
	var p models.PostModel
	if err := s.db.First(&p, "id = ?", postID).Error; err != nil {
		return err
	}
	if strings.HasPrefix(p.Slug, digestSlugPrefix) || strings.TrimSpace(p.Summary) != "" {
		return nil
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return err
	}

	text, err := s.ai.Generate(ctx, openai.GenerateParams{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   postMaxTokens,
		System:      postSystemPrompt,
		Prompt:      buildPostPrompt(&p),
	})
	if err != nil {
		return err
	}

	return s.posts.SetSummary(p.ID, text)
}

// List returns all digest artifacts with their posts.
func (s *Service) List() ([]models.SummaryArtifactModel, error) {
	var items []models.SummaryArtifactModel
	err := s.db.Preload("Post").Order("type ASC").Find(&items).Error
	return items, err
}

// RunScheduled regenerates every due digest. Per-type failures are
// logged and do not stop the remaining types.
func (s *Service) RunScheduled(ctx context.Context) error {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return err
	}
	if !cfg.AutoSummary {
		return nil
	}

	types := []string{models.SummaryTypePopular, models.SummaryTypeLatest}
	if cfg.TargetCategoryID != "" {
		types = append(types, models.SummaryTypeCategory)
	}

	var errs []error
	for _, typ := range types {
		last, err := s.lastGeneratedAt(typ)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ShouldRegenerate(cfg.SummaryFrequency, last, time.Now()) {
			continue
		}
		if _, err := s.Generate(ctx, typ, cfg.TargetCategoryID); err != nil {
			s.logger.Warn("scheduled digest failed", zap.String("type", typ), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		s.logger.Info("digest regenerated", zap.String("type", typ))
	}
	return errors.Join(errs...)
}

// ShouldRegenerate reports whether enough time has passed since the last
// generation for the configured frequency. A zero last time always fires.
func ShouldRegenerate(frequency string, last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	gate := dailyGate
	switch frequency {
	case settings.FrequencyWeekly:
		gate = weeklyGate
	case settings.FrequencyMonthly:
		gate = monthlyGate
	}
	return now.Sub(last) >= gate
}

func (s *Service) lastGeneratedAt(typ string) (time.Time, error) {
	var art models.SummaryArtifactModel
	err := s.db.Where("type = ?", typ).First(&art).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return art.GeneratedAt, nil
}

func (s *Service) selectSources(typ, categoryID string, cfg settings.Settings) ([]source, string, error) {
	base := s.db.Model(&models.PostModel{}).
		Where("is_published = ?", true).
		Where("slug NOT LIKE ?", digestSlugPrefix+"%")

	title := digestTitles[typ]
	var posts []models.PostModel

	switch typ {
	case models.SummaryTypePopular:
		limit := cfg.TopN
		if limit > maxSources {
			limit = maxSources
		}
		err := base.
			Joins("JOIN visits ON visits.post_id = posts.id").
			Order("visits.ai_referrals DESC, visits.post_id ASC").
			Limit(limit).
			Find(&posts).Error
		if err != nil {
			return nil, "", err
		}

	case models.SummaryTypeCategory:
		if categoryID == "" {
			categoryID = cfg.TargetCategoryID
		}
		var cat models.CategoryModel
		if err := s.db.First(&cat, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", apperr.New(apperr.KindInvalidCategory, "category does not exist: "+categoryID)
			}
			return nil, "", err
		}
		title = digestTitles[typ] + ": " + cat.Name
		err := base.
			Where("category_id = ?", cat.ID).
			Order("created_at DESC").
			Limit(maxSources).
			Find(&posts).Error
		if err != nil {
			return nil, "", err
		}

	case models.SummaryTypeLatest:
		err := base.
			Order("created_at DESC").
			Limit(maxSources).
			Find(&posts).Error
		if err != nil {
			return nil, "", err
		}
	}

	sources := make([]source, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		sources = append(sources, source{
			ID:      p.ID,
			Title:   p.Title,
			Excerpt: excerptOf(p),
			URL:     s.posts.Permalink(p),
		})
	}
	return sources, title, nil
}

func (s *Service) upsertArtifact(typ, title, text string, sourceIDs []string) (*models.SummaryArtifactModel, error) {
	now := time.Now()
	var art models.SummaryArtifactModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("type = ?", typ).First(&art).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			digest := models.PostModel{
				Title:       title,
				Text:        text,
				Slug:        digestSlugPrefix + typ,
				IsPublished: true,
			}
			if err := tx.Create(&digest).Error; err != nil {
				return err
			}
			art = models.SummaryArtifactModel{
				Type:        typ,
				PostID:      digest.ID,
				GeneratedAt: now,
				SourceIDs:   sourceIDs,
			}
			return tx.Create(&art).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.PostModel{}).
			Where("id = ?", art.PostID).
			Updates(map[string]interface{}{"title": title, "text": text}).Error; err != nil {
			return err
		}
		art.GeneratedAt = now
		art.SourceIDs = sourceIDs
		return tx.Model(&art).Select("generated_at", "source_ids").Updates(&art).Error
	})
	if err != nil {
		return nil, err
	}
	return &art, nil
}
