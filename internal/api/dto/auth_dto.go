package dto

// TokenInfo 表示令牌資訊
type TokenInfo struct {
	Value     string `json:"value"`
	ExpiresIn int    `json:"expires_in"` //秒
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"` //密碼明文
}

// LoginResponse 表示登入響應的完整結構
type LoginResponse struct {
	AccessToken TokenInfo `json:"access_token"`
	User        UserDTO   `json:"user"`
}
