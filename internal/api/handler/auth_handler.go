package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
)

type AuthHandler struct {
	authService service.IAuthService
	userService service.IUserService
}

func NewAuthHandler(authService service.IAuthService, userService service.IUserService) *AuthHandler {
	if authService == nil || userService == nil {
		panic("auth handler missing required service")
	}
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// @Summary email and password login
// @Tags auth
// @Accept json
// @Produce json
// @Param loginInfo body dto.LoginDTO true "email and password"
// @Success 200 {object} api.Response{data=dto.LoginResponse} "success"
// @Failure 401 {object} api.ResponseError{data=string} "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError{data=string} "Internal server error"
// @Router /auth/login [post]
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginDTO dto.LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&loginDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(loginDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	ctx := r.Context()

	token, user, err := a.authService.Login(ctx, loginDTO.Email, loginDTO.Password)
	if err != nil {
		writeErr(w, err)
		return
	}

	api.SuccessJSON(w, dto.LoginResponse{
		AccessToken: dto.TokenInfo{
			Value:     token,
			ExpiresIn: int((time.Duration(constants.AccessTokenDuration) * time.Hour).Seconds()),
		},
		User: convertUserToDTO(user),
	}, nil)
}

// @Summary register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param userInfo body dto.RegisterUserDTO true "user info"
// @Success 200 {object} api.Response{data=dto.UserDTO} "success"
// @Failure 400 {object} api.ResponseError{data=string} "BadRequestCode"
// @Failure 500 {object} api.ResponseError{data=string} "Internal server error"
// @Router /auth/register [post]
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerDTO dto.RegisterUserDTO
	if err := json.NewDecoder(r.Body).Decode(&registerDTO); err != nil {
		writeBadRequest(w, nil)
		return
	}
	if err := dto.Validate(registerDTO); err != nil {
		writeBadRequest(w, err)
		return
	}

	ctx := r.Context()

	user, err := a.userService.Register(ctx, service.RegisterInput{
		Email:    registerDTO.Email,
		Name:     registerDTO.Name,
		Phone:    registerDTO.Phone,
		Password: registerDTO.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	api.SuccessJSON(w, convertUserToDTO(user), nil)
}
