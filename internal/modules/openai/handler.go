package openai

import (
	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/settings"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

type Handler struct {
	client *Client
	cfgSvc *settings.Service
}

func NewHandler(client *Client, cfgSvc *settings.Service) *Handler {
	return &Handler{client: client, cfgSvc: cfgSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/openai", authMW)
	{
		g.POST("/validate", h.validateKey)
		g.GET("/models", h.listModels)
	}
}

type validateKeyDTO struct {
	// Optional; falls back to the stored key when absent.
	APIKey string `json:"api_key"`
}

func (h *Handler) validateKey(c *gin.Context) {
	var dto validateKeyDTO
	_ = c.ShouldBindJSON(&dto)

	key := dto.APIKey
	if key == "" {
		cfg, err := h.cfgSvc.Get()
		if err != nil {
			response.FromError(c, err)
			return
		}
		key = cfg.APIKey
	}

	if err := h.client.ValidateKey(c.Request.Context(), key); err != nil {
		response.FromError(c, err)
		return
	}

	// A freshly supplied key is stored only once it has proven to work.
	if dto.APIKey != "" {
		if err := h.cfgSvc.SetAPIKey(dto.APIKey); err != nil {
			response.FromError(c, err)
			return
		}
	}
	response.OK(c, gin.H{"valid": true})
}

func (h *Handler) listModels(c *gin.Context) {
	cfg, err := h.cfgSvc.Get()
	if err != nil {
		response.FromError(c, err)
		return
	}

	models, err := h.client.ListModels(c.Request.Context(), cfg.APIKey)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"models": models})
}
