// Package settings manages the persisted, operator-editable configuration.
// Values live in a single JSON options row; invalid writes are clamped to
// safe defaults instead of being rejected.
package settings

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const optionKey = "settings"

const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultTopN        = 10
	maxTopN            = 50
)

// Summary regeneration frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Settings is the full persisted configuration.
type Settings struct {
	APIKey           string  `json:"api_key"`
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	AutoSummary      bool    `json:"auto_summary"`
	SummaryFrequency string  `json:"summary_frequency"`
	TargetCategoryID string  `json:"target_category_id"`
	SiteName         string  `json:"site_name"`
	SiteDescription  string  `json:"site_description"`
	SiteURL          string  `json:"site_url"`
	TopN             int     `json:"top_n"`
	AnalyticsEnabled bool    `json:"analytics_enabled"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Model            *string  `json:"model"`
	Temperature      *float64 `json:"temperature"`
	AutoSummary      *bool    `json:"auto_summary"`
	SummaryFrequency *string  `json:"summary_frequency"`
	TargetCategoryID *string  `json:"target_category_id"`
	SiteName         *string  `json:"site_name"`
	SiteDescription  *string  `json:"site_description"`
	SiteURL          *string  `json:"site_url"`
	TopN             *int     `json:"top_n"`
	AnalyticsEnabled *bool    `json:"analytics_enabled"`
}

// Default returns the settings applied on first run.
func Default() Settings {
	return Settings{
		Model:            DefaultModel,
		Temperature:      DefaultTemperature,
		AutoSummary:      true,
		SummaryFrequency: FrequencyDaily,
		TopN:             DefaultTopN,
		AnalyticsEnabled: true,
	}
}

// Normalize clamps out-of-range values to their defaults.
func (s *Settings) Normalize() {
	s.Model = strings.TrimSpace(s.Model)
	if !strings.HasPrefix(s.Model, "gpt-") {
		s.Model = DefaultModel
	}
	if s.Temperature < 0 || s.Temperature > 1 {
		s.Temperature = DefaultTemperature
	}
	switch s.SummaryFrequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		s.SummaryFrequency = FrequencyDaily
	}
	if s.TopN < 1 || s.TopN > maxTopN {
		s.TopN = DefaultTopN
	}
	s.SiteURL = strings.TrimRight(strings.TrimSpace(s.SiteURL), "/")
}

// Service manages the persisted Settings with an in-memory cache.
type Service struct {
	db  *gorm.DB
	mu  sync.RWMutex
	cur *Settings
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the current settings, loading from DB if not cached.
func (s *Service) Get() (Settings, error) {
	s.mu.RLock()
	if s.cur != nil {
		defer s.mu.RUnlock()
		return *s.cur, nil
	}
	s.mu.RUnlock()
	return s.load()
}

func (s *Service) load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var opt models.OptionModel
	err := s.db.Where("name = ?", optionKey).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := Default()
		s.cur = &defaults
		_ = s.persist(defaults)
		return defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}

	loaded := Default()
	if err := json.Unmarshal([]byte(opt.Value), &loaded); err != nil {
		return Settings{}, err
	}
	loaded.Normalize()
	s.cur = &loaded
	return loaded, nil
}

// Update applies a partial update, normalizes the result and persists it.
func (s *Service) Update(p Patch) (Settings, error) {
	cur, err := s.Get()
	if err != nil {
		return Settings{}, err
	}

	if p.Model != nil {
		cur.Model = *p.Model
	}
	if p.Temperature != nil {
		cur.Temperature = *p.Temperature
	}
	if p.AutoSummary != nil {
		cur.AutoSummary = *p.AutoSummary
	}
	if p.SummaryFrequency != nil {
		cur.SummaryFrequency = *p.SummaryFrequency
	}
	if p.TargetCategoryID != nil {
		cur.TargetCategoryID = *p.TargetCategoryID
	}
	if p.SiteName != nil {
		cur.SiteName = *p.SiteName
	}
	if p.SiteDescription != nil {
		cur.SiteDescription = *p.SiteDescription
	}
	if p.SiteURL != nil {
		cur.SiteURL = *p.SiteURL
	}
	if p.TopN != nil {
		cur.TopN = *p.TopN
	}
	if p.AnalyticsEnabled != nil {
		cur.AnalyticsEnabled = *p.AnalyticsEnabled
	}

	cur.Normalize()
	return cur, s.store(cur)
}

// SetAPIKey persists a validated API credential.
func (s *Service) SetAPIKey(key string) error {
	cur, err := s.Get()
	if err != nil {
		return err
	}
	cur.APIKey = strings.TrimSpace(key)
	return s.store(cur)
}

func (s *Service) store(cur Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &cur
	return s.persist(cur)
}

func (s *Service) persist(cur Settings) error {
	raw, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.OptionModel{Name: optionKey, Value: string(raw)}).Error
}
