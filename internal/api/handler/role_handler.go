package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
	"github.com/go-chi/chi/v5"
)

type RoleHandler struct {
	roleService service.IRoleService
	abilities   abilityResolver
}

func NewRoleHandler(roleService service.IRoleService, userService service.IUserService) *RoleHandler {
	if roleService == nil || userService == nil {
		panic("role handler missing required service")
	}
	return &RoleHandler{
		roleService: roleService,
		abilities:   abilityResolver{userService: userService},
	}
}

// @Summary create a role, admin only
// @Tags role
// @Accept json
// @Produce json
// @Param role body dto.CreateRoleDTO true "role content"
// @Success 200 {object} api.Response{data=dto.RoleDTO} "success"
// @Failure 400 {object} api.ResponseError{data=string} "BadRequestCode"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /roles [post]
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Manage, authz.SubjectRole) {
		writeForbidden(w)
		return
	}

	var createDTO dto.CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(createDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	role, err := h.roleService.CreateRole(ctx, model.RoleValue(createDTO.Value), createDTO.Description)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertRoleToDTO(role), nil)
}

// @Summary get one role by value, admin only
// @Tags role
// @Produce json
// @Param value path string true "role value, ADMIN or USER"
// @Success 200 {object} api.Response{data=dto.RoleDTO} "success"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Security ApiKeyAuth
// @Router /roles/{value} [get]
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Manage, authz.SubjectRole) {
		writeForbidden(w)
		return
	}

	value := chi.URLParam(r, "value")
	if !model.IsValidRoleValue(value) {
		writeBadRequest(w, er.New(er.BadRequestCode, "unknown role value"))
		return
	}

	role, err := h.roleService.GetRoleByValue(ctx, model.RoleValue(value))
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertRoleToDTO(role), nil)
}

func convertRoleToDTO(role *model.Role) dto.RoleDTO {
	return dto.RoleDTO{
		ID:          role.ID,
		Value:       string(role.Value),
		Description: role.Description,
	}
}
