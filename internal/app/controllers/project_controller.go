package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/app/services"
	"github.com/selin/labmatch/internal/middleware"
)

// ProjectController handles project posting operations
type ProjectController struct {
	projectService services.ProjectService
	logger         zerolog.Logger
}

// NewProjectController creates a new ProjectController
func NewProjectController(projectService services.ProjectService, logger zerolog.Logger) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		logger:         logger,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")))
		return 0, false
	}
	return id, true
}

// ListProjects lists postings
// @Summary List project postings
// @Description Returns a filtered, paginated page of postings. Defaults to ACTIVE postings.
// @Tags projects
// @Produce json
// @Param status query string false "Project status filter" Enums(DRAFT, ACTIVE, CLOSED)
// @Param authorEmail query string false "Filter by author email"
// @Param department query string false "Filter by department"
// @Param search query string false "Search in title and description"
// @Param tag query string false "Filter by tag"
// @Param page query int false "1-based page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.ProjectListResponse
// @Router /projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	var req dto.ProjectFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters")))
		return
	}
	p, hasPrincipal := middleware.GetPrincipal(ctx)
	var resp *dto.ProjectListResponse
	var err error
	if hasPrincipal {
		resp, err = c.projectService.ListProjects(ctx.Request.Context(), &p, req)
	} else {
		resp, err = c.projectService.ListProjects(ctx.Request.Context(), nil, req)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetProject fetches a single posting
// @Summary Get a project posting
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Router /projects/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, hasPrincipal := middleware.GetPrincipal(ctx)
	var resp *dto.ProjectResponse
	var err error
	if hasPrincipal {
		resp, err = c.projectService.GetProject(ctx.Request.Context(), &p, id)
	} else {
		resp, err = c.projectService.GetProject(ctx.Request.Context(), nil, id)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// CreateProject creates a posting
// @Summary Create a project posting
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "Project posting"
// @Success 201 {object} dto.ProjectResponse
// @Failure 403 {object} dto.ErrorResponse "Caller is not a teacher"
// @Router /projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid create project payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload")))
		return
	}

	resp, err := c.projectService.CreateProject(ctx.Request.Context(), principal, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// UpdateProject edits a posting
// @Summary Update a project posting
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.UpdateProjectRequest true "Updated fields"
// @Success 200 {object} dto.ProjectResponse
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the posting"
// @Router /projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
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

	var req dto.UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload")))
		return
	}

	resp, err := c.projectService.UpdateProject(ctx.Request.Context(), principal, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteProject removes a posting
// @Summary Delete a project posting
// @Description Deletes the posting, its applications and all stored files.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the posting"
// @Router /projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
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

	if err := c.projectService.DeleteProject(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Project deleted"})
}

// UploadDocument attaches a supporting PDF
// @Summary Upload a project document
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param document formData file true "PDF document (max 10MB)"
// @Success 201 {object} dto.FileResponse
// @Router /projects/{id}/documents [post]
func (c *ProjectController) UploadDocument(ctx *gin.Context) {
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

	fileHeader, err := ctx.FormFile("document")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Document file is required").WithField("document")))
		return
	}

	resp, err := c.projectService.UploadDocument(ctx.Request.Context(), principal, id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// ListDocuments lists the attached documents
// @Summary List project documents
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} dto.FileResponse
// @Router /projects/{id}/documents [get]
func (c *ProjectController) ListDocuments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.projectService.ListDocuments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteDocument removes an attached document
// @Summary Delete a project document
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param fileId path int true "File ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /projects/{id}/documents/{fileId} [delete]
func (c *ProjectController) DeleteDocument(ctx *gin.Context) {
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
	fileID, ok := parseIDParam(ctx, "fileId")
	if !ok {
		return
	}

	if err := c.projectService.DeleteDocument(ctx.Request.Context(), principal, id, fileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Document deleted"})
}
