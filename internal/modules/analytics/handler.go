package analytics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/analytics", authMW)
	{
		g.GET("/overview", h.overview)
		g.GET("/top", h.topContent)
		g.GET("/trend", h.trend)
	}
}

func (h *Handler) overview(c *gin.Context) {
	ov, err := h.svc.Overview()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ov)
}

func (h *Handler) topContent(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || n < 1 || n > 50 {
		n = 10
	}

	items, err := h.svc.TopContent(n)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"items": items})
}

func (h *Handler) trend(c *gin.Context) {
	trend, err := h.svc.MonthOverMonthTrend()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"trend": trend})
}
