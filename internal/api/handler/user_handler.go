package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/authz"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
)

type UserHandler struct {
	userService service.IUserService
	roleService service.IRoleService
	abilities   abilityResolver
}

func NewUserHandler(userService service.IUserService, roleService service.IRoleService) *UserHandler {
	if userService == nil || roleService == nil {
		panic("user handler missing required service")
	}
	return &UserHandler{
		userService: userService,
		roleService: roleService,
		abilities:   abilityResolver{userService: userService},
	}
}

// @Summary list all users
// @Tags user
// @Produce json
// @Success 200 {object} api.Response{data=[]dto.UserDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	// 只有ADMIN能看使用者清單
	if !ability.Can(authz.Manage, authz.SubjectUser) {
		writeForbidden(w)
		return
	}

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, convertUserToDTO(&users[i]))
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary get a user profile with own products, auctions and orders
// @Tags user
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} api.Response{data=dto.ProfileResponse} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Failure 404 {object} api.ResponseError{data=string} "NotFoundCode"
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	profile, err := h.userService.GetProfile(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}

	if !ability.Can(authz.Read, profile) {
		writeForbidden(w)
		return
	}

	resp := dto.ProfileResponse{
		User:     convertUserToDTO(profile),
		Products: make([]dto.ProductDTO, 0, len(profile.Products)),
		Auctions: make([]dto.AuctionDTO, 0, len(profile.Auctions)),
		Orders:   make([]dto.OrderDTO, 0, len(profile.Orders)),
	}
	for i := range profile.Products {
		resp.Products = append(resp.Products, convertProductToDTO(&profile.Products[i]))
	}
	for i := range profile.Auctions {
		resp.Auctions = append(resp.Auctions, convertAuctionToDTO(&profile.Auctions[i]))
	}
	for i := range profile.Orders {
		resp.Orders = append(resp.Orders, convertOrderToDTO(&profile.Orders[i]))
	}
	api.SuccessJSON(w, resp, nil)
}

// @Summary update own profile
// @Tags user
// @Accept mpfd
// @Produce json
// @Param id path int true "user id"
// @Param name formData string false "display name"
// @Param phone formData string false "phone"
// @Param photo formData file false "avatar image"
// @Success 200 {object} api.Response{data=dto.UserDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	target, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ability.Can(authz.Update, target) {
		writeForbidden(w)
		return
	}

	photo, err := readImageFile(r, "photo")
	if err != nil {
		writeErr(w, err)
		return
	}

	input := service.UpdateProfileInput{Photo: photo}
	if v := r.FormValue("name"); v != "" {
		input.Name = &v
	}
	if v := r.FormValue("phone"); v != "" {
		input.Phone = &v
	}

	updated, err := h.userService.UpdateProfile(ctx, id, input)
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertUserToDTO(updated), nil)
}

// @Summary grant a role to a user
// @Tags user
// @Accept json
// @Produce json
// @Param id path int true "user id"
// @Param role body dto.GrantRoleDTO true "role value"
// @Success 200 {object} api.Response{data=dto.UserDTO} "success"
// @Failure 403 {object} api.ResponseError{data=string} "ForbiddenCode"
// @Security ApiKeyAuth
// @Router /users/{id}/roles [post]
func (h *UserHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseUintParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}

	ability, _, err := h.abilities.resolve(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	// 角色授予是管理操作
	if !ability.Can(authz.Manage, authz.SubjectRole) {
		writeForbidden(w)
		return
	}

	var grantDTO dto.GrantRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&grantDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(grantDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.userService.GrantRole(ctx, id, model.RoleValue(grantDTO.Value))
	if err != nil {
		writeErr(w, err)
		return
	}
	api.SuccessJSON(w, convertUserToDTO(user), nil)
}
