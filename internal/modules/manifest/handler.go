package manifest

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/manifest", authMW)
	{
		g.POST("/regenerate", h.regenerate)
		g.GET("/preview", h.preview)
	}
}

// RegisterRootRoutes serves the manifests at their well-known paths.
func (h *Handler) RegisterRootRoutes(r *gin.Engine) {
	r.GET("/"+BasicFileName, h.serve(DetailBasic))
	r.GET("/"+FullFileName, h.serve(DetailFull))
}

func (h *Handler) regenerate(c *gin.Context) {
	if err := h.svc.Regenerate(); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"files": []string{
		h.svc.FilePath(DetailBasic),
		h.svc.FilePath(DetailFull),
	}})
}

func (h *Handler) preview(c *gin.Context) {
	detail := DetailBasic
	if c.Query("detail") == string(DetailFull) {
		detail = DetailFull
	}

	content, err := h.svc.Preview(detail)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.String(http.StatusOK, content)
}

// serve returns the written file when present and falls back to
// rendering on the fly before the first regeneration.
func (h *Handler) serve(detail Detail) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := h.svc.FilePath(detail)
		if _, err := os.Stat(path); err == nil {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.File(path)
			return
		}

		content, err := h.svc.Preview(detail)
		if err != nil {
			response.FromError(c, err)
			return
		}
		c.String(http.StatusOK, content)
	}
}
