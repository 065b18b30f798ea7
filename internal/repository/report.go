package repository

import (
	"context"

	"archivesys/internal/model"
)

// ReportRepository stores report records and their generated file references.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	FindByID(ctx context.Context, id string) (*model.Report, error)
	// SetFile attaches the generated file to a report.
	SetFile(ctx context.Context, id string, f model.FileRef) error
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Report], error)
	Delete(ctx context.Context, id string) error
}

// UserRepository stores accounts together with their profile.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Update overwrites account fields and upserts the profile. PasswordHash is
	// only written when non-empty.
	Update(ctx context.Context, u *model.User) (*model.User, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)
	Delete(ctx context.Context, id string) error
}
