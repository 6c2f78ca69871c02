package tracking

import (
	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

// Handler accepts client-side AI detection reports from the tracking script.
type Handler struct{ rec *Recorder }

func NewHandler(rec *Recorder) *Handler { return &Handler{rec: rec} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/track/ai", h.reportAI)
}

type aiReportDTO struct {
	PostID string `json:"post_id" binding:"required"`
}

func (h *Handler) reportAI(c *gin.Context) {
	var dto aiReportDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Best-effort like server-side recording: the visitor never sees a
	// tracking failure.
	_ = h.rec.RecordAIDetection(dto.PostID)
	response.OK(c, gin.H{"ok": 1})
}
