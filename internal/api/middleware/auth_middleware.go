package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
	"github.com/RoyceAzure/lab/marketplace/pkg/api"
	"github.com/RoyceAzure/lab/marketplace/pkg/er"
)

// AuthMiddleware 驗證ctx是否有token payload, 沒有就擋下請求
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Value(constants.AuthorizationPayloadKey).(*auth.Claims)
		if !ok {
			api.ErrorJSON(w, int(er.UnauthenticatedCode), er.New(er.UnauthenticatedCode, "unauthenticated"), er.ErrStrMap[er.UnauthenticatedCode])
			return
		}
		next.ServeHTTP(w, r)
	})
}
