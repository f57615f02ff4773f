package repository

import (
	"context"

	"github.com/Elmamis69/jatrack/internal/domain"
)

// UserRepository persists account records and enforces email
// uniqueness at the store boundary.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

// ApplicationRepository persists application records. Every read and
// write is scoped to the owning user inside the query itself; a record
// belonging to another user is indistinguishable from a missing one.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) (domain.Application, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (domain.Application, error)
	Update(ctx context.Context, app domain.Application) (domain.Application, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Search(ctx context.Context, ownerID int64, filter domain.SearchFilter, page domain.PageRequest) (domain.Page, error)
}
