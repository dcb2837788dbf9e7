package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// Service is the append-only audit trail. Every mutating operation in
// the tracker records exactly one entry; nothing edits or deletes them.
type Service interface {
	Record(ctx context.Context, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error
	RecordInTx(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error
	List(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error {
	return s.record(ctx, s.repo, actorID, actorName, action, details)
}

// RecordInTx appends the entry inside the caller's transaction so the
// audit row commits or rolls back with the action it describes.
func (s *service) RecordInTx(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error {
	return s.record(ctx, s.repo.WithTx(tx), actorID, actorName, action, details)
}

func (s *service) record(ctx context.Context, repo Repository, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error {
	if actorID == uuid.Nil {
		return fmt.Errorf("actor id is required")
	}
	if actorName == "" {
		return fmt.Errorf("actor name is required")
	}
	if !action.IsValid() {
		return fmt.Errorf("invalid audit action %q", action)
	}

	return repo.Create(ctx, &models.AuditLogEntry{
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
		Details:   details,
	})
}

func (s *service) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return s.repo.List(ctx, limit)
}
