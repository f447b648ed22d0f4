package ports

import (
	"context"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
