package model

type RoleValue string

const (
	RoleAdmin RoleValue = "ADMIN"
	RoleUser  RoleValue = "USER"
)

func IsValidRoleValue(value string) bool {
	switch RoleValue(value) {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null;type:varchar(100)" json:"email"`
	Name         string    `gorm:"not null;type:varchar(50)" json:"name"`
	Phone        string    `gorm:"not null;type:varchar(50)" json:"phone"`
	PasswordHash string    `gorm:"not null;type:varchar(255)" json:"-"`
	Photo        string    `gorm:"type:varchar(255)" json:"photo,omitempty"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Products     []Product `gorm:"foreignKey:UserID" json:"products,omitempty"`
	Auctions     []Auction `gorm:"foreignKey:UserID" json:"auctions,omitempty"`
	Orders       []Order   `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	BaseModel
}

// HasRole 檢查使用者是否擁有指定角色
func (u *User) HasRole(value RoleValue) bool {
	for _, r := range u.Roles {
		if r.Value == value {
			return true
		}
	}
	return false
}

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Value       RoleValue `gorm:"unique;not null;type:varchar(20)" json:"value"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	BaseModel
}
