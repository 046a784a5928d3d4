package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/app/services"
	"github.com/selin/labmatch/internal/middleware"
)

// ApplicationController handles application lifecycle operations
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Apply submits an application, optionally with a resume
// @Summary Apply to a project
// @Description Submits a cover letter, optionally with a resume PDF, against an active posting. One application per student per project.
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectId formData int true "Project ID"
// @Param coverLetter formData string true "Cover letter"
// @Param skills formData []string false "Skills" collectionFormat(multi)
// @Param resume formData file false "Resume PDF (max 5MB)"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Failure 409 {object} dto.ErrorResponse "Duplicate application or project not accepting applications"
// @Router /applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid application payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload")))
		return
	}

	// The resume is optional; only a malformed upload is an error
	resume, err := ctx.FormFile("resume")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Malformed resume upload").WithField("resume")))
			return
		}
		resume = nil
	}

	resp, err := c.applicationService.Apply(ctx.Request.Context(), principal, req, resume)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// ListApplications lists the applications visible to the caller
// @Summary List applications
// @Description Students see their own applications, teachers those against their postings, admins all.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param projectId query int false "Filter by project"
// @Param studentId query int false "Filter by student (teachers and admins)"
// @Param status query string false "Filter by status" Enums(PENDING, ACCEPTED, REJECTED)
// @Param page query int false "1-based page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.ApplicationListResponse
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.ApplicationFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters")))
		return
	}

	resp, err := c.applicationService.ListApplications(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetApplication fetches a single application
// @Summary Get an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 403 {object} dto.ErrorResponse "Caller may not view this application"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.applicationService.GetApplication(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// UpdateStatus decides a pending application
// @Summary Accept or reject an application
// @Description Applies a terminal decision. Already-decided applications are never re-decided.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "Decision"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the project"
// @Failure 409 {object} dto.ErrorResponse "Application already decided"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload")))
		return
	}

	resp, err := c.applicationService.Decide(ctx.Request.Context(), principal, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Withdraw removes an application
// @Summary Withdraw an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not the applicant"
// @Router /applications/{id} [delete]
func (c *ApplicationController) Withdraw(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.applicationService.Withdraw(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Application withdrawn"})
}

// DownloadResume streams the application's resume PDF
// @Summary Download a resume
// @Tags applications
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse "Caller is not the posting's author"
// @Router /applications/{id}/resume [get]
func (c *ApplicationController) DownloadResume(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	path, downloadName, err := c.applicationService.GetResumePath(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.FileAttachment(path, downloadName)
}
