package post

import (
	"github.com/gin-gonic/gin"
	"github.com/ynshm/llm-traffic-optimizer/internal/models"
	"github.com/ynshm/llm-traffic-optimizer/internal/modules/tracking"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/markdown"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/pagination"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/response"
)

// Handler exposes the public read surface and the admin CRUD of posts.
type Handler struct {
	svc     *Service
	tracker *tracking.Recorder
}

func NewHandler(svc *Service, tracker *tracking.Recorder) *Handler {
	return &Handler{svc: svc, tracker: tracker}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.GET("", h.list)
	g.GET("/:slug", h.get)
	g.POST("", authMW, h.create)
	g.PATCH("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	tx := h.svc.Query().Order("created_at DESC")

	var items []models.PostModel
	pag, err := pagination.Paginate(tx, q, &items)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// get serves a published post; this is the page-view path where visits are
// recorded, so tracking must never fail the request.
func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}

	h.tracker.RecordFromRequest(p.ID, c.GetHeader("User-Agent"), c.GetHeader("Referer"))
	response.OK(c, gin.H{
		"post": p,
		"html": markdown.Render(p.Text),
	})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
