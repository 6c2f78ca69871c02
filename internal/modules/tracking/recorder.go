// Package tracking classifies inbound visits as AI-referred or ordinary and
// accumulates per-post view counters.
package tracking

import (
	"time"

	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recorder upserts visit counters. Recording is best-effort: it runs off the
// request path and failures are logged, never surfaced to the visitor.
type Recorder struct {
	db     *gorm.DB
	cfgSvc *settings.Service
	logger *zap.Logger
}

func NewRecorder(db *gorm.DB, cfgSvc *settings.Service, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, cfgSvc: cfgSvc, logger: logger.Named("tracking")}
}

// RecordFromRequest classifies the request headers and records the visit in
// the background. No-op when analytics are disabled.
func (r *Recorder) RecordFromRequest(postID, userAgent, referrer string) {
	cfg, err := r.cfgSvc.Get()
	if err != nil || !cfg.AnalyticsEnabled {
		return
	}

	isAI := IsAIReferral(userAgent, referrer)
	go func() {
		if err := r.Record(postID, isAI); err != nil {
			r.logger.Warn("record visit failed",
				zap.String("post_id", postID),
				zap.Bool("ai_referral", isAI),
				zap.Error(err),
			)
		}
	}()
}

// Record increments the counters for a post in a single atomic
// insert-or-update, so concurrent visits to the same post never lose an
// increment.
func (r *Recorder) Record(postID string, aiReferral bool) error {
	var aiDelta int64
	if aiReferral {
		aiDelta = 1
	}
	now := time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"views":        gorm.Expr("views + 1"),
			"ai_referrals": gorm.Expr("ai_referrals + ?", aiDelta),
			"last_updated": now,
		}),
	}).Create(&models.VisitModel{
		PostID:      postID,
		Views:       1,
		AIReferrals: aiDelta,
		LastUpdated: now,
	}).Error
}

// RecordAIDetection bumps only the AI-referral counter for a post whose view
// was already counted server-side but classified as ordinary; used by the
// client-side detection report.
func (r *Recorder) RecordAIDetection(postID string) error {
	now := time.Now()
	res := r.db.Model(&models.VisitModel{}).
		Where("post_id = ? AND ai_referrals < views", postID).
		Updates(map[string]interface{}{
			"ai_referrals": gorm.Expr("ai_referrals + 1"),
			"last_updated": now,
		})
	return res.Error
}
