package util

import (
	"context"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
)

// GetTokenClaimsFromContext 從請求上下文取token payload, 未登入回傳nil
func GetTokenClaimsFromContext(ctx context.Context) *auth.Claims {
	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(constants.RequestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return "unknown"
}
