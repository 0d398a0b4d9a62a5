package authz

import (
	"testing"

	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/stretchr/testify/require"
)

func adminActor() *Actor {
	return &Actor{UserID: 1, Roles: []model.RoleValue{model.RoleAdmin, model.RoleUser}}
}

func userActor(id uint) *Actor {
	return &Actor{UserID: id, Roles: []model.RoleValue{model.RoleUser}}
}

func TestAbilityAnonymous(t *testing.T) {
	ability := NewAbility(nil)

	require.True(t, ability.Can(Read, SubjectProduct))
	require.True(t, ability.Can(Read, SubjectAuction))
	require.False(t, ability.Can(Create, SubjectProduct))
	require.False(t, ability.Can(Read, SubjectOrder))
	require.False(t, ability.Can(Read, SubjectUser))
	require.False(t, ability.Can(Update, &model.Product{ID: 1, UserID: 2}))
}

func TestAbilityAdminManagesEverything(t *testing.T) {
	ability := NewAbility(adminActor())

	subjects := []Subject{SubjectUser, SubjectRole, SubjectProduct, SubjectAuction, SubjectOrder, SubjectOrderItem}
	actions := []Action{Manage, Create, Read, Update, Delete}
	for _, s := range subjects {
		for _, a := range actions {
			require.True(t, ability.Can(a, s), "admin should be allowed %s on %s", a, s)
		}
	}

	// 即使資源屬於別人
	require.True(t, ability.Can(Delete, &model.Product{ID: 9, UserID: 42}))
	require.True(t, ability.Can(Manage, &model.Order{ID: 3, UserID: 42}))
	require.True(t, ability.Can(Manage, &model.OrderItem{ID: 7}))
}

func TestAbilityPlainUser(t *testing.T) {
	ability := NewAbility(userActor(5))

	tests := []struct {
		name    string
		action  Action
		subject any
		want    bool
	}{
		{"read product class", Read, SubjectProduct, true},
		{"read auction class", Read, SubjectAuction, true},
		{"create product", Create, SubjectProduct, true},
		{"create order", Create, SubjectOrder, true},
		{"create auction", Create, SubjectAuction, true},
		{"create user", Create, SubjectUser, false},
		{"read own order", Read, &model.Order{ID: 1, UserID: 5}, true},
		{"read other order", Read, &model.Order{ID: 1, UserID: 6}, false},
		{"update own product", Update, &model.Product{ID: 1, UserID: 5}, true},
		{"update other product", Update, &model.Product{ID: 1, UserID: 6}, false},
		{"delete own auction", Delete, &model.Auction{ID: 1, UserID: 5}, true},
		{"delete other auction", Delete, &model.Auction{ID: 1, UserID: 6}, false},
		{"read other product instance", Read, &model.Product{ID: 1, UserID: 6}, true},
		{"read own profile", Read, &model.User{ID: 5}, true},
		{"read other profile", Read, &model.User{ID: 6}, false},
		{"update own profile", Update, &model.User{ID: 5}, true},
		{"manage order item", Manage, &model.OrderItem{ID: 2}, false},
		{"manage own order", Manage, &model.Order{ID: 1, UserID: 5}, false},
		{"delete order", Delete, SubjectOrder, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ability.Can(tt.action, tt.subject))
		})
	}
}

func TestAbilityUnknownSubject(t *testing.T) {
	ability := NewAbility(adminActor())
	require.False(t, ability.Can(Read, struct{}{}))
}

func TestActorFromUser(t *testing.T) {
	require.Nil(t, ActorFromUser(nil))

	u := &model.User{
		ID:    3,
		Roles: []model.Role{{Value: model.RoleUser}, {Value: model.RoleAdmin}},
	}
	actor := ActorFromUser(u)
	require.Equal(t, uint(3), actor.UserID)
	require.True(t, actor.hasRole(model.RoleAdmin))
	require.True(t, actor.hasRole(model.RoleUser))
}
