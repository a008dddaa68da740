package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pyconid/pyconid25-be-sub000/internal/api/handler/v1/response"
	"github.com/pyconid/pyconid25-be-sub000/internal/api/middleware"
	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateProfile(ctx context.Context, id uint, name, phone string) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	value, ok := ctx.Get(middleware.CtxKeyUserID)
	if !ok {
		return domain.User{}, response.ErrUnauthorized("missing bearer token")
	}

	userID, ok := value.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized("invalid token")
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> svc.GetUser -> %w", err))
	}

	return user, nil
}
