package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
)

type StaffUserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// RequireStaff rejects requests from non-staff users. Must run after
// VerifyJWT.
func RequireStaff(svc StaffUserService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := ctx.Get(CtxKeyUserID)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		user, err := svc.GetUser(ctx.Request.Context(), userID.(uint))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		if !user.IsStaff {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "staff only"})
			return
		}

		ctx.Next()
	}
}
