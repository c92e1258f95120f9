package resumes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mycv-backend/internal/jobs"
	"mycv-backend/internal/llm"
	"mycv-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/generate", h.generate)
	rg.GET("/resumes", h.history)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
}

type generateRequest struct {
	JobDescription string `json:"job_description"`
	JobID          *int64 `json:"job_id"`
	Language       string `json:"language"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	resume, err := h.Svc.Generate(c.Request.Context(), req.JobDescription, req.Language, req.JobID)
	if err != nil {
		h.failGenerate(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, resume)
}

// failGenerate maps the provider taxonomy onto HTTP statuses. Retryable
// provider states are 503; provider faults the user can remediate with a
// different input are 400; operator misconfiguration is a plain 500.
func (h *Handler) failGenerate(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrProfileIncomplete):
		respond.Error(c, http.StatusBadRequest, "profile_incomplete", err.Error(), nil)
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrOverloaded):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", err.Error(), nil)
	case errors.Is(err, llm.ErrNoJSON), errors.Is(err, llm.ErrTruncated):
		respond.Error(c, http.StatusBadRequest, "ai_response_invalid", err.Error(), nil)
	case errors.Is(err, llm.ErrConfig):
		respond.Error(c, http.StatusInternalServerError, "ai_misconfigured", err.Error(), nil)
	case errors.Is(err, llm.ErrFault):
		respond.Error(c, http.StatusInternalServerError, "ai_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate resume", nil)
	}
}

func (h *Handler) history(c *gin.Context) {
	items, err := h.Svc.History(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resume, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load resume")
		return
	}
	respond.JSON(c, http.StatusOK, resume)
}

type updateRequest struct {
	Resume Content `json:"resume"`
}

func (h *Handler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	resume, err := h.Svc.Update(c.Request.Context(), id, req.Resume)
	if err != nil {
		h.fail(c, err, "failed to update resume")
		return
	}
	respond.JSON(c, http.StatusOK, resume)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete resume")
		return
	}
	respond.NoContent(c)
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

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid id", nil)
		return 0, false
	}
	return id, true
}
