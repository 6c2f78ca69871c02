package settings

import (
	"fmt"
	"testing"

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
	if err := db.AutoMigrate(&models.OptionModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNormalizeClampsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		in    Settings
		check func(t *testing.T, s Settings)
	}{
		{
			name: "non-gpt model falls back",
			in:   Settings{Model: "claude-3-opus", Temperature: 0.5, SummaryFrequency: FrequencyDaily, TopN: 10},
			check: func(t *testing.T, s Settings) {
				if s.Model != DefaultModel {
					t.Errorf("model = %q, want %q", s.Model, DefaultModel)
				}
			},
		},
		{
			name: "temperature above range",
			in:   Settings{Model: "gpt-4", Temperature: 1.5, SummaryFrequency: FrequencyDaily, TopN: 10},
			check: func(t *testing.T, s Settings) {
				if s.Temperature != DefaultTemperature {
					t.Errorf("temperature = %v, want %v", s.Temperature, DefaultTemperature)
				}
			},
		},
		{
			name: "negative temperature",
			in:   Settings{Model: "gpt-4", Temperature: -0.1, SummaryFrequency: FrequencyDaily, TopN: 10},
			check: func(t *testing.T, s Settings) {
				if s.Temperature != DefaultTemperature {
					t.Errorf("temperature = %v, want %v", s.Temperature, DefaultTemperature)
				}
			},
		},
		{
			name: "boundary temperatures survive",
			in:   Settings{Model: "gpt-4", Temperature: 0, SummaryFrequency: FrequencyDaily, TopN: 10},
			check: func(t *testing.T, s Settings) {
				if s.Temperature != 0 {
					t.Errorf("temperature = %v, want 0", s.Temperature)
				}
			},
		},
		{
			name: "unknown frequency",
			in:   Settings{Model: "gpt-4", Temperature: 0.5, SummaryFrequency: "hourly", TopN: 10},
			check: func(t *testing.T, s Settings) {
				if s.SummaryFrequency != FrequencyDaily {
					t.Errorf("frequency = %q, want %q", s.SummaryFrequency, FrequencyDaily)
				}
			},
		},
		{
			name: "top n out of range",
			in:   Settings{Model: "gpt-4", Temperature: 0.5, SummaryFrequency: FrequencyDaily, TopN: 500},
			check: func(t *testing.T, s Settings) {
				if s.TopN != DefaultTopN {
					t.Errorf("top n = %d, want %d", s.TopN, DefaultTopN)
				}
			},
		},
		{
			name: "top n zero",
			in:   Settings{Model: "gpt-4", Temperature: 0.5, SummaryFrequency: FrequencyDaily, TopN: 0},
			check: func(t *testing.T, s Settings) {
				if s.TopN != DefaultTopN {
					t.Errorf("top n = %d, want %d", s.TopN, DefaultTopN)
				}
			},
		},
		{
			name: "site url trailing slash trimmed",
			in:   Settings{Model: "gpt-4", Temperature: 0.5, SummaryFrequency: FrequencyDaily, TopN: 10, SiteURL: "https://example.com/"},
			check: func(t *testing.T, s Settings) {
				if s.SiteURL != "https://example.com" {
					t.Errorf("site url = %q", s.SiteURL)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.in
			s.Normalize()
			tc.check(t, s)
		})
	}
}

func TestServiceFirstGetAppliesDefaults(t *testing.T) {
	svc := NewService(openTestDB(t))

	got, err := svc.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := Default()
	if got != want {
		t.Errorf("first get = %+v, want defaults %+v", got, want)
	}
}

func TestServiceUpdatePersistsAcrossInstances(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	model := "gpt-4"
	topN := 25
	if _, err := svc.Update(Patch{Model: &model, TopN: &topN}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A fresh service over the same DB must see the stored values.
	got, err := NewService(db).Get()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Model != "gpt-4" || got.TopN != 25 {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestServiceUpdateClampsBeforePersist(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	temp := 7.5
	if _, err := svc.Update(Patch{Temperature: &temp}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := NewService(db).Get()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", got.Temperature, DefaultTemperature)
	}
}

func TestSetAPIKey(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	if err := svc.SetAPIKey("  sk-test-123  "); err != nil {
		t.Fatalf("set key: %v", err)
	}
	got, err := NewService(db).Get()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.APIKey != "sk-test-123" {
		t.Errorf("api key = %q", got.APIKey)
	}
}
