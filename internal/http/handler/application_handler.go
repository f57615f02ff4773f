package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/http/middleware"
	"github.com/Elmamis69/jatrack/internal/service"
)

// ApplicationHandler exposes the caller-scoped application API.
type ApplicationHandler struct {
	Apps *service.ApplicationService
}

// NewApplicationHandler wires the application endpoints.
func NewApplicationHandler(apps *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps}
}

// applicationRequest is the wire shape for create and update. It has
// no id or owner field; both are derived from route and caller.
type applicationRequest struct {
	Company      string      `json:"company"`
	RoleTitle    string      `json:"roleTitle"`
	Status       string      `json:"status"`
	AppliedDate  domain.Date `json:"appliedDate"`
	ContactEmail string      `json:"contactEmail"`
	JobURL       string      `json:"jobUrl"`
	Notes        string      `json:"notes"`
}

func (r applicationRequest) toDomain() domain.Application {
	return domain.Application{
		Company:      strings.TrimSpace(r.Company),
		RoleTitle:    strings.TrimSpace(r.RoleTitle),
		Status:       domain.Status(r.Status),
		AppliedDate:  r.AppliedDate,
		ContactEmail: strings.TrimSpace(r.ContactEmail),
		JobURL:       strings.TrimSpace(r.JobURL),
		Notes:        r.Notes,
	}
}

type applicationResponse struct {
	ID           int64         `json:"id"`
	Company      string        `json:"company"`
	RoleTitle    string        `json:"roleTitle"`
	Status       domain.Status `json:"status"`
	AppliedDate  domain.Date   `json:"appliedDate"`
	ContactEmail string        `json:"contactEmail,omitempty"`
	JobURL       string        `json:"jobUrl,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

func newApplicationResponse(app domain.Application) applicationResponse {
	return applicationResponse{
		ID:           app.ID,
		Company:      app.Company,
		RoleTitle:    app.RoleTitle,
		Status:       app.Status,
		AppliedDate:  app.AppliedDate,
		ContactEmail: app.ContactEmail,
		JobURL:       app.JobURL,
		Notes:        app.Notes,
	}
}

type pageResponse struct {
	Content       []applicationResponse `json:"content"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalElements int64                 `json:"totalElements"`
	TotalPages    int                   `json:"totalPages"`
}

func newPageResponse(page domain.Page) pageResponse {
	content := make([]applicationResponse, 0, len(page.Content))
	for _, app := range page.Content {
		content = append(content, newApplicationResponse(app))
	}
	return pageResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}

// Search handles GET /api/applications.
func (h *ApplicationHandler) Search(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}

	filter, err := parseSearchFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := parsePageRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Apps.Search(c.Request.Context(), identity.UserID, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(result))
}

// Create handles POST /api/applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}

	created, err := h.Apps.Create(c.Request.Context(), identity.UserID, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newApplicationResponse(created))
}

// Get handles GET /api/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	app, err := h.Apps.Get(c.Request.Context(), identity.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newApplicationResponse(app))
}

// Update handles PUT /api/applications/:id.
func (h *ApplicationHandler) Update(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}

	updated, err := h.Apps.Update(c.Request.Context(), identity.UserID, id, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newApplicationResponse(updated))
}

// Delete handles DELETE /api/applications/:id.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Apps.Delete(c.Request.Context(), identity.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A malformed id can never match a record; report it the same
		// way as a missing one.
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func parseSearchFilter(c *gin.Context) (domain.SearchFilter, error) {
	filter := domain.SearchFilter{Query: c.Query("q")}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.SearchFilter{}, err
		}
		filter.Status = &status
	}
	return filter, nil
}

func parsePageRequest(c *gin.Context) (domain.PageRequest, error) {
	req := domain.DefaultPageRequest()

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return domain.PageRequest{}, domain.NewValidationError("page", "page must be a non-negative integer")
		}
		req.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return domain.PageRequest{}, domain.NewValidationError("size", "size must be a positive integer")
		}
		req.Size = size
	}
	if raw := c.Query("sort"); raw != "" {
		parts := strings.SplitN(raw, ",", 2)
		req.SortBy = strings.TrimSpace(parts[0])
		req.SortDesc = len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
	}
	return req, nil
}
