package settings

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

// Handler exposes the settings surface to the admin UI.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/settings", authMW)
	g.GET("", h.get)
	g.PATCH("", h.patch)
}

// redacted is Settings with the credential masked for display.
type redacted struct {
	Settings
	APIKey string `json:"api_key"`
}

func redact(s Settings) redacted {
	out := redacted{Settings: s}
	key := s.APIKey
	switch {
	case key == "":
		out.APIKey = ""
	case len(key) <= 8:
		out.APIKey = strings.Repeat("*", len(key))
	default:
		out.APIKey = key[:3] + strings.Repeat("*", 6) + key[len(key)-4:]
	}
	return out
}

func (h *Handler) get(c *gin.Context) {
	cur, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, redact(cur))
}

func (h *Handler) patch(c *gin.Context) {
	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.svc.Update(p)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, redact(updated))
}
