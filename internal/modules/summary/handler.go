package summary

import (
	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/summaries", authMW)
	{
		g.GET("", h.list)
		g.POST("/generate", h.generate)
	}
}

type generateDTO struct {
	Type       string `json:"type"        binding:"required"`
	CategoryID string `json:"category_id"`
}

func (h *Handler) generate(c *gin.Context) {
	var dto generateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	art, err := h.svc.Generate(c.Request.Context(), dto.Type, dto.CategoryID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, art)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"items": items})
}
