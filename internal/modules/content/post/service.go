package post

import (
	"errors"
	"strings"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"gorm.io/gorm"
)

type CreatePostDTO struct {
	Title      string   `json:"title" binding:"required"`
	Text       string   `json:"text"`
	Slug       string   `json:"slug"  binding:"required"`
	Excerpt    string   `json:"excerpt"`
	CategoryID *string  `json:"category_id"`
	Publish    bool     `json:"publish"`
	Tags       []string `json:"tags"`
}

type UpdatePostDTO struct {
	Title      *string  `json:"title"`
	Text       *string  `json:"text"`
	Excerpt    *string  `json:"excerpt"`
	CategoryID *string  `json:"category_id"`
	Publish    *bool    `json:"publish"`
	Tags       []string `json:"tags"`
}

// PublishHook is invoked after a post transitions to published.
type PublishHook func(post *models.PostModel)

// Service owns post persistence and the publish notification point.
type Service struct {
	db      *gorm.DB
	cfgSvc  *settings.Service
	onPubs  []PublishHook
}

func NewService(db *gorm.DB, cfgSvc *settings.Service) *Service {
	return &Service{db: db, cfgSvc: cfgSvc}
}

// OnPublish registers a hook fired whenever a post becomes published.
// Hooks run in their own goroutine and must not assume request context.
func (s *Service) OnPublish(fn PublishHook) {
	s.onPubs = append(s.onPubs, fn)
}

func (s *Service) notifyPublished(p *models.PostModel) {
	for _, fn := range s.onPubs {
		go fn(p)
	}
}

// Permalink builds the canonical public URL of a post.
func (s *Service) Permalink(p *models.PostModel) string {
	base := ""
	if cfg, err := s.cfgSvc.Get(); err == nil {
		base = cfg.SiteURL
	}
	return base + "/posts/" + p.Slug
}

func (s *Service) GetByID(id string) (*models.PostModel, error) {
	var p models.PostModel
	if err := s.db.Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetBySlug(slug string) (*models.PostModel, error) {
	var p models.PostModel
	if err := s.db.Preload("Category").Where("slug = ? AND is_published = ?", slug, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Query returns a base query of published posts for listing and aggregation.
func (s *Service) Query() *gorm.DB {
	return s.db.Model(&models.PostModel{}).Where("is_published = ?", true)
}

func (s *Service) Create(dto *CreatePostDTO) (*models.PostModel, error) {
	var count int64
	s.db.Model(&models.PostModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, errors.New("slug already exists")
	}

	p := models.PostModel{
		Title:       strings.TrimSpace(dto.Title),
		Text:        dto.Text,
		Slug:        dto.Slug,
		Excerpt:     dto.Excerpt,
		CategoryID:  dto.CategoryID,
		IsPublished: dto.Publish,
		Tags:        dto.Tags,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	if p.IsPublished {
		s.notifyPublished(&p)
	}
	return &p, nil
}

func (s *Service) Update(id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}

	wasPublished := p.IsPublished
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
		p.Title = *dto.Title
	}
	if dto.Text != nil {
		updates["text"] = *dto.Text
		p.Text = *dto.Text
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = *dto.Excerpt
		p.Excerpt = *dto.Excerpt
	}
	if dto.CategoryID != nil {
		updates["category_id"] = *dto.CategoryID
		p.CategoryID = dto.CategoryID
	}
	if dto.Publish != nil {
		updates["is_published"] = *dto.Publish
		p.IsPublished = *dto.Publish
	}
	if dto.Tags != nil {
		updates["tags"] = models.StringSlice(dto.Tags)
		p.Tags = dto.Tags
	}

	if len(updates) > 0 {
		if err := s.db.Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if !wasPublished && p.IsPublished {
		s.notifyPublished(p)
	}
	return p, nil
}

// SetSummary stores the AI-generated per-post summary.
func (s *Service) SetSummary(id, summary string) error {
	return s.db.Model(&models.PostModel{}).Where("id = ?", id).Update("summary", summary).Error
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.PostModel{}, "id = ?", id).Error
}
