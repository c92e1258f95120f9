package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mycv-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.POST("/jobs", h.create)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
	rg.GET("/jobs/:id/resumes", h.resumes)
	rg.GET("/jobs/:id/versions", h.versions)
	rg.POST("/jobs/:id/versions/:versionId/restore", h.restore)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

type createRequest struct {
	OriginalText string `json:"original_text"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Create(c.Request.Context(), req.OriginalText)
	if err != nil {
		h.fail(c, err, "failed to create job")
		return
	}
	respond.Created(c, job)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load job")
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update job")
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete job")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) resumes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resumes, err := h.Svc.Resumes(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to list job resumes")
		return
	}
	respond.JSON(c, http.StatusOK, resumes)
}

func (h *Handler) versions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	versions, err := h.Svc.Versions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to list job versions")
		return
	}
	respond.JSON(c, http.StatusOK, versions)
}

func (h *Handler) restore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	versionID, ok := pathID(c, "versionId")
	if !ok {
		return
	}

	job, err := h.Svc.Restore(c.Request.Context(), id, versionID)
	if err != nil {
		h.fail(c, err, "failed to restore version")
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid id", nil)
		return 0, false
	}
	return id, true
}
