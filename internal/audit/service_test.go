package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.AuditLogEntry) error
	listFn   func(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return nil, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.AuditLogEntry
	repo.createFn = func(ctx context.Context, entry *models.AuditLogEntry) error {
		created = entry
		return nil
	}

	actorID := uuid.New()
	if err := svc.Record(context.Background(), actorID, "Ramesh", enums.AuditActionSaleCreate, "oil 40kg to Gupta Traders"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil {
		t.Fatal("expected audit entry to be created")
	}
	if created.ActorID != actorID || created.ActorName != "Ramesh" {
		t.Fatalf("unexpected actor data: %+v", created)
	}
	if created.Action != enums.AuditActionSaleCreate {
		t.Fatalf("unexpected action %q", created.Action)
	}
}

func TestService_RecordValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name      string
		actorID   uuid.UUID
		actorName string
		action    enums.AuditAction
	}{
		{name: "missing actor id", actorID: uuid.Nil, actorName: "Ramesh", action: enums.AuditActionLogin},
		{name: "missing actor name", actorID: uuid.New(), actorName: "", action: enums.AuditActionLogin},
		{name: "invalid action", actorID: uuid.New(), actorName: "Ramesh", action: enums.AuditAction("not_real")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Record(context.Background(), tc.actorID, tc.actorName, tc.action, ""); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_RecordRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expectedErr := errors.New("boom")
	repo.createFn = func(ctx context.Context, entry *models.AuditLogEntry) error {
		return expectedErr
	}

	if err := svc.Record(context.Background(), uuid.New(), "Ramesh", enums.AuditActionLogout, ""); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}
