package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

type directoryService interface {
	Staff(ctx context.Context) ([]string, error)
	Rooms(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context) error
}

// DirectoryHandler serves the staff and room choice lists.
type DirectoryHandler struct {
	service directoryService
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(svc directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// Staff godoc
// @Summary List staff names
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff [get]
func (h *DirectoryHandler) Staff(c *gin.Context) {
	h.list(c, h.service.Staff)
}

// Rooms godoc
// @Summary List room names
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms [get]
func (h *DirectoryHandler) Rooms(c *gin.Context) {
	h.list(c, h.service.Rooms)
}

// InvalidateCache godoc
// @Summary Drop cached staff and room lists
// @Tags Directory
// @Security BearerAuth
// @Success 204
// @Router /directory/cache [delete]
func (h *DirectoryHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *DirectoryHandler) list(c *gin.Context, fetch func(context.Context) ([]string, error)) {
	names, err := fetch(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, names)
}
