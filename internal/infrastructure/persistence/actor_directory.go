package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visaflow/backend/internal/domain/identity"
	"github.com/visaflow/backend/internal/domain/payment"
	"github.com/visaflow/backend/internal/domain/shared"
)

// GormActorDirectory resolves actor ids against the users table
type GormActorDirectory struct {
	db *gorm.DB
}

// NewGormActorDirectory creates a new GormActorDirectory
func NewGormActorDirectory(db *gorm.DB) *GormActorDirectory {
	return &GormActorDirectory{db: db}
}

// DisplayName returns the actor's full name, or "" when unknown. An
// unknown approver is not an error: the projection simply shows no
// name, the same way it tolerates an orphaned detail pointer.
func (d *GormActorDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	var user identity.User
	if err := d.db.WithContext(ctx).Select("full_name").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", shared.NewStorageError("actor lookup", err)
	}
	return user.FullName, nil
}

var _ payment.ActorDirectory = (*GormActorDirectory)(nil)
