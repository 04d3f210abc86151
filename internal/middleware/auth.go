package middleware

import (
	"net/http"

	"relytailors-be/internal/auth"
	"relytailors-be/internal/logger"
	"relytailors-be/internal/utils"

	"go.uber.org/zap"
)

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
	msgNotAdmin    = "Not authorized as an admin"
)

type Authenticator struct {
	tokens *auth.TokenManager
}

func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Protect rejects requests without a valid access token and stores the
// caller's id and role in the request context.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			utils.WriteJSONError(w, msgNoToken, http.StatusUnauthorized)
			return
		}

		claims, err := a.tokens.Parse(tokenStr)
		if err != nil {
			logger.FromCtx(r.Context()).Info("rejected access token",
				zap.String("layer", "middleware"),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			utils.WriteJSONError(w, msgTokenFailed, http.StatusUnauthorized)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Role)
		ctx = logger.WithUserID(ctx, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Protect.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsAdmin(r.Context()) {
			utils.WriteJSONError(w, msgNotAdmin, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
