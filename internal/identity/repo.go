package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
)

// Repository manages persistence for users and the single session.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByLoginID(ctx context.Context, loginID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ReplaceSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an identity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) SaveUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByLoginID matches the stored lowercase handle.
func (r *repository) FindUserByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var user models.User
	handle := strings.ToLower(strings.TrimSpace(loginID))
	if err := r.db.WithContext(ctx).First(&user, "login_id = ?", handle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ReplaceSession drops any existing session row before inserting the
// new one; at most one session exists at a time.
func (r *repository) ReplaceSession(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) ClearSession(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Session{}).Error
}

func (r *repository) CurrentSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}
