package authz

import (
	"github.com/RoyceAzure/lab/marketplace/internal/model"
)

type Action string

const (
	Manage Action = "manage" // 包含所有動作
	Create Action = "create"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

type Subject string

const (
	SubjectAll       Subject = "all"
	SubjectUser      Subject = "user"
	SubjectRole      Subject = "role"
	SubjectProduct   Subject = "product"
	SubjectAuction   Subject = "auction"
	SubjectOrder     Subject = "order"
	SubjectOrderItem Subject = "order_item"
)

// Actor 代表發起請求的使用者, nil代表匿名
type Actor struct {
	UserID uint
	Roles  []model.RoleValue
}

func ActorFromUser(u *model.User) *Actor {
	if u == nil {
		return nil
	}
	roles := make([]model.RoleValue, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Value)
	}
	return &Actor{UserID: u.ID, Roles: roles}
}

func (a *Actor) hasRole(value model.RoleValue) bool {
	for _, r := range a.Roles {
		if r == value {
			return true
		}
	}
	return false
}

// rule 為一條允許規則
// ownerOnly 表示只有資源擁有者(userId相同)才允許
type rule struct {
	action    Action
	subject   Subject
	ownerOnly bool
}

// Ability 是使用者的能力集合, 由角色編譯一次後重複查詢
// 純函數, 不產生副作用也不回傳錯誤, 拒絕時Can回傳false
type Ability struct {
	actor *Actor
	rules []rule
}

// NewAbility 依使用者角色建立能力集合
// 規則優先序:
//   - 匿名: 只能Read Product/Auction
//   - ADMIN: Manage一切, 短路所有其他規則
//   - USER: Read Product/Auction; Read自己的Order;
//     Create Product/Order/Auction; Update/Delete自己的Product/Auction;
//     Read/Update自己的User(個人資料)
func NewAbility(actor *Actor) *Ability {
	a := &Ability{actor: actor}

	if actor == nil {
		a.rules = []rule{
			{action: Read, subject: SubjectProduct},
			{action: Read, subject: SubjectAuction},
		}
		return a
	}

	if actor.hasRole(model.RoleAdmin) {
		a.rules = []rule{
			{action: Manage, subject: SubjectAll},
		}
		return a
	}

	a.rules = []rule{
		{action: Read, subject: SubjectProduct},
		{action: Read, subject: SubjectAuction},
		{action: Read, subject: SubjectOrder, ownerOnly: true},
		{action: Read, subject: SubjectUser, ownerOnly: true},
		{action: Update, subject: SubjectUser, ownerOnly: true},
		{action: Create, subject: SubjectProduct},
		{action: Create, subject: SubjectOrder},
		{action: Create, subject: SubjectAuction},
		{action: Update, subject: SubjectProduct, ownerOnly: true},
		{action: Update, subject: SubjectAuction, ownerOnly: true},
		{action: Delete, subject: SubjectProduct, ownerOnly: true},
		{action: Delete, subject: SubjectAuction, ownerOnly: true},
	}
	return a
}

// Can 檢查動作是否被允許
// subject可以是Subject(類別層級檢查)或domain model實例
// 類別層級檢查忽略ownerOnly條件, 實例檢查會比對擁有者
func (a *Ability) Can(action Action, subject any) bool {
	kind, owner, isInstance := resolveSubject(subject)
	if kind == "" {
		return false
	}

	for _, r := range a.rules {
		if r.action != Manage && r.action != action {
			continue
		}
		if r.subject != SubjectAll && r.subject != kind {
			continue
		}
		if r.ownerOnly && isInstance {
			if a.actor == nil || owner != a.actor.UserID {
				continue
			}
		}
		return true
	}
	return false
}

// 封閉的subject集合, 直接用型別分派即可, 不需要泛用規則直譯器
func resolveSubject(subject any) (kind Subject, owner uint, isInstance bool) {
	switch s := subject.(type) {
	case Subject:
		return s, 0, false
	case *model.User:
		return SubjectUser, s.ID, true
	case *model.Role:
		return SubjectRole, 0, true
	case *model.Product:
		return SubjectProduct, s.OwnerID(), true
	case *model.Auction:
		return SubjectAuction, s.OwnerID(), true
	case *model.Order:
		return SubjectOrder, s.OwnerID(), true
	case *model.OrderItem:
		return SubjectOrderItem, 0, true
	default:
		return "", 0, false
	}
}
