package profile

import (
	"context"
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

// RegisterRoutes attaches all profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile/complete", h.complete)
	rg.PUT("/profile/import", h.importProfile)

	rg.GET("/personal-info", h.getPersonalInfo)
	rg.PUT("/personal-info", h.updatePersonalInfo)

	rg.GET("/work-experiences", h.listWorkExperiences)
	rg.POST("/work-experiences", h.createWorkExperience)
	rg.GET("/work-experiences/:id", h.getWorkExperience)
	rg.PUT("/work-experiences/:id", h.updateWorkExperience)
	rg.DELETE("/work-experiences/:id", h.deleteWorkExperience)

	rg.GET("/education", h.listEducation)
	rg.POST("/education", h.createEducation)
	rg.GET("/education/:id", h.getEducation)
	rg.PUT("/education/:id", h.updateEducation)
	rg.DELETE("/education/:id", h.deleteEducation)

	rg.GET("/skills", h.listSkills)
	rg.POST("/skills", h.createSkills)
	rg.DELETE("/skills/:id", h.deleteSkill)

	rg.GET("/projects", h.listProjects)
	rg.POST("/projects", h.createProject)
	rg.GET("/projects/:id", h.getProject)
	rg.PUT("/projects/:id", h.updateProject)
	rg.DELETE("/projects/:id", h.deleteProject)

	rg.GET("/languages", h.listLanguages)
	rg.POST("/languages", h.createLanguage)
	rg.PUT("/languages/reorder", h.reorderLanguages)
	rg.GET("/languages/:id", h.getLanguage)
	rg.PUT("/languages/:id", h.updateLanguage)
	rg.DELETE("/languages/:id", h.deleteLanguage)

	rg.GET("/photos", h.getPhoto)
	rg.PUT("/photos", h.uploadPhoto)
	rg.DELETE("/photos", h.deletePhoto)
}

func (h *Handler) complete(c *gin.Context) {
	complete, err := h.Svc.Complete(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, complete)
}

func (h *Handler) importProfile(c *gin.Context) {
	var req Import
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.Import(c.Request.Context(), req); err != nil {
		h.fail(c, err, "import failed")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"message": "Profile imported successfully",
		"counts": gin.H{
			"work_experiences": len(req.WorkExperiences),
			"education":        len(req.Education),
			"skills":           len(req.Skills),
			"projects":         len(req.Projects),
			"languages":        len(req.Languages),
		},
	})
}

func (h *Handler) getPersonalInfo(c *gin.Context) {
	info, err := h.Svc.GetPersonalInfo(c.Request.Context())
	if errors.Is(err, ErrNotFound) {
		respond.JSON(c, http.StatusOK, nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load personal info", nil)
		return
	}
	respond.JSON(c, http.StatusOK, info)
}

func (h *Handler) updatePersonalInfo(c *gin.Context) {
	var req PersonalInfoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	info, err := h.Svc.UpdatePersonalInfo(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to update personal info")
		return
	}
	respond.JSON(c, http.StatusOK, info)
}

func (h *Handler) listWorkExperiences(c *gin.Context) {
	exps, err := h.Svc.ListWorkExperiences(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list work experiences", nil)
		return
	}
	respond.JSON(c, http.StatusOK, exps)
}

func (h *Handler) createWorkExperience(c *gin.Context) {
	var req WorkExperienceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	exp, err := h.Svc.CreateWorkExperience(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create work experience")
		return
	}
	respond.Created(c, exp)
}

func (h *Handler) getWorkExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	exp, err := h.Svc.GetWorkExperience(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load work experience")
		return
	}
	respond.JSON(c, http.StatusOK, exp)
}

func (h *Handler) updateWorkExperience(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req WorkExperienceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	exp, err := h.Svc.UpdateWorkExperience(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update work experience")
		return
	}
	respond.JSON(c, http.StatusOK, exp)
}

func (h *Handler) deleteWorkExperience(c *gin.Context) {
	h.deleteByID(c, h.Svc.DeleteWorkExperience, "failed to delete work experience")
}

func (h *Handler) listEducation(c *gin.Context) {
	items, err := h.Svc.ListEducation(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list education", nil)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) createEducation(c *gin.Context) {
	var req EducationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	edu, err := h.Svc.CreateEducation(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create education")
		return
	}
	respond.Created(c, edu)
}

func (h *Handler) getEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	edu, err := h.Svc.GetEducation(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load education")
		return
	}
	respond.JSON(c, http.StatusOK, edu)
}

func (h *Handler) updateEducation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req EducationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	edu, err := h.Svc.UpdateEducation(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update education")
		return
	}
	respond.JSON(c, http.StatusOK, edu)
}

func (h *Handler) deleteEducation(c *gin.Context) {
	h.deleteByID(c, h.Svc.DeleteEducation, "failed to delete education")
}

func (h *Handler) listSkills(c *gin.Context) {
	skills, err := h.Svc.ListSkills(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list skills", nil)
		return
	}
	respond.JSON(c, http.StatusOK, skills)
}

type createSkillsRequest struct {
	Names string `json:"names"`
}

func (h *Handler) createSkills(c *gin.Context) {
	var req createSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	skills, err := h.Svc.AddSkills(c.Request.Context(), req.Names)
	if err != nil {
		h.fail(c, err, "failed to add skills")
		return
	}
	respond.Created(c, skills)
}

func (h *Handler) deleteSkill(c *gin.Context) {
	h.deleteByID(c, h.Svc.DeleteSkill, "failed to delete skill")
}

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.Svc.ListProjects(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list projects", nil)
		return
	}
	respond.JSON(c, http.StatusOK, projects)
}

func (h *Handler) createProject(c *gin.Context) {
	var req ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	proj, err := h.Svc.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create project")
		return
	}
	respond.Created(c, proj)
}

func (h *Handler) getProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	proj, err := h.Svc.GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load project")
		return
	}
	respond.JSON(c, http.StatusOK, proj)
}

func (h *Handler) updateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	proj, err := h.Svc.UpdateProject(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update project")
		return
	}
	respond.JSON(c, http.StatusOK, proj)
}

func (h *Handler) deleteProject(c *gin.Context) {
	h.deleteByID(c, h.Svc.DeleteProject, "failed to delete project")
}

func (h *Handler) listLanguages(c *gin.Context) {
	langs, err := h.Svc.ListLanguages(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list languages", nil)
		return
	}
	respond.JSON(c, http.StatusOK, langs)
}

func (h *Handler) createLanguage(c *gin.Context) {
	var req LanguageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	lang, err := h.Svc.CreateLanguage(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to create language")
		return
	}
	respond.Created(c, lang)
}

func (h *Handler) reorderLanguages(c *gin.Context) {
	var req []ReorderItem
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	langs, err := h.Svc.ReorderLanguages(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to reorder languages")
		return
	}
	respond.JSON(c, http.StatusOK, langs)
}

func (h *Handler) getLanguage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lang, err := h.Svc.GetLanguage(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load language")
		return
	}
	respond.JSON(c, http.StatusOK, lang)
}

func (h *Handler) updateLanguage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req LanguageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	lang, err := h.Svc.UpdateLanguage(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "failed to update language")
		return
	}
	respond.JSON(c, http.StatusOK, lang)
}

func (h *Handler) deleteLanguage(c *gin.Context) {
	h.deleteByID(c, h.Svc.DeleteLanguage, "failed to delete language")
}

func (h *Handler) getPhoto(c *gin.Context) {
	photo, err := h.Svc.GetPhoto(c.Request.Context())
	if errors.Is(err, ErrNotFound) || (err == nil && photo == nil) {
		respond.JSON(c, http.StatusOK, nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load photo", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"image_data": *photo})
}

type photoUploadRequest struct {
	ImageData string `json:"image_data"`
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	var req photoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.UploadPhoto(c.Request.Context(), req.ImageData); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusBadRequest, "validation_error", "personal info must be created first", nil)
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload photo", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"image_data": req.ImageData})
}

func (h *Handler) deletePhoto(c *gin.Context) {
	if err := h.Svc.DeletePhoto(c.Request.Context()); err != nil {
		h.fail(c, err, "failed to delete photo")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) deleteByID(c *gin.Context, del func(ctx context.Context, id int64) error, msg string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		h.fail(c, err, msg)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "not found", nil)
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
