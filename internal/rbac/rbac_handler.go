package rbac

import (
	"net/http"

	"govpay/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	repo    Repository
}

func NewHandler(service Service, repo Repository) *Handler {
	return &Handler{service: service, repo: repo}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.repo.ListRoles()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list roles", nil)
		return
	}
	response.Success(c, http.StatusOK, roles, nil)
}

func (h *Handler) ListPermissions(c *gin.Context) {
	perms, err := h.repo.ListPermissions()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list permissions", nil)
		return
	}
	response.Success(c, http.StatusOK, perms, nil)
}

func (h *Handler) ReloadPolicy(c *gin.Context) {
	if err := h.service.LoadPolicy(); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to reload policy", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reloaded": true}, nil)
}
