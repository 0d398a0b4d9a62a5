package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/marketplace/internal/constants"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/auth"
)

// AuthPayloadMiddleware 解析Bearer token
// token有任何錯誤都不中斷請求, 只是不設置context, 後續授權視為匿名
func AuthPayloadMiddleware(tokenMaker auth.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := checkAuthPayload(tokenMaker, r)
			if ok {
				ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
			} else {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func checkAuthPayload(tokenMaker auth.Maker, r *http.Request) (*auth.Claims, bool) {
	authorizationHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		return nil, false
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != string(constants.AuthorizationTypeBearer) {
		return nil, false
	}

	claims, err := tokenMaker.VerifyToken(fields[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
