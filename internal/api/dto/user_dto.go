package dto

// UserDTO 表示用戶資訊, PasswordHash永遠不出現在回應內
type UserDTO struct {
	ID    uint     `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Phone string   `json:"phone"`
	Photo string   `json:"photo,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

type RegisterUserDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=50"`
	Phone    string `json:"phone" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileDTO 走multipart form, 欄位都可選
type UpdateProfileDTO struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
}

type GrantRoleDTO struct {
	Value string `json:"value" validate:"required,oneof=ADMIN USER"`
}

type RoleDTO struct {
	ID          uint   `json:"id"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type CreateRoleDTO struct {
	Value       string `json:"value" validate:"required,oneof=ADMIN USER"`
	Description string `json:"description" validate:"required,max=255"`
}

// ProfileResponse 帶出使用者本人的商品/拍賣/訂單
type ProfileResponse struct {
	User     UserDTO      `json:"user"`
	Products []ProductDTO `json:"products"`
	Auctions []AuctionDTO `json:"auctions"`
	Orders   []OrderDTO   `json:"orders"`
}
