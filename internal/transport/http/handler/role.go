package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rolechat/internal/app"
	"rolechat/internal/transport/http/response"
)

type RoleHandler struct {
	roleService *app.RoleService
}

func NewRoleHandler(roleService *app.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) Catalog(c *gin.Context) {
	roles, categories, err := h.roleService.Catalog()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list roles failed")
		return
	}

	response.OK(c, gin.H{
		"roles":      roles,
		"categories": categories,
	})
}

func (h *RoleHandler) Get(c *gin.Context) {
	roleID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roleID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid role id")
		return
	}

	role, err := h.roleService.GetByID(uint(roleID64))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrRoleNotFound):
			response.Error(c, http.StatusNotFound, response.CodeRoleNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch role failed")
		}
		return
	}

	response.OK(c, gin.H{
		"id":                role.ID,
		"name":              role.Name,
		"short_description": role.ShortDescription,
		"long_description":  role.LongDescription,
	})
}
