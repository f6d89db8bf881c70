package notification

import (
	"net/http"

	"govpay/internal/shared/apperror"
	"govpay/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAll(c *gin.Context) {
	staffID := c.GetString("staff_id")
	unreadOnly := c.Query("unread") == "true"

	resp, err := h.service.GetForStaff(c.Request.Context(), staffID, unreadOnly)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkRead(c *gin.Context) {
	staffID := c.GetString("staff_id")
	id := c.Param("id")

	if err := h.service.MarkRead(c.Request.Context(), staffID, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true}, nil)
}
