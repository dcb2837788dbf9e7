package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
	"github.com/kesarlabs/milltrack-backend/pkg/security"
	"github.com/kesarlabs/milltrack-backend/pkg/validate"
)

// InitializeInput creates the sole Owner account on first run.
type InitializeInput struct {
	Name     string `json:"name" validate:"required"`
	LoginID  string `json:"login_id" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
}

// CreateSupervisorInput onboards a Supervisor with a generated
// temporary password.
type CreateSupervisorInput struct {
	Name         string `json:"name" validate:"required"`
	LoginID      string `json:"login_id" validate:"required"`
	Phone        string `json:"phone"`
	EmployeeCode string `json:"employee_code"`
	Email        string `json:"email" validate:"omitempty,email"`
}

// Service manages identities and the single login session.
type Service interface {
	Initialize(ctx context.Context, input InitializeInput) (*models.User, error)
	Login(ctx context.Context, loginID, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	CreateSupervisor(ctx context.Context, actor *models.User, input CreateSupervisorInput) (*models.User, string, error)
	ToggleStatus(ctx context.Context, actor *models.User, targetID uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*models.User, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	auditSvc audit.Service
	logg     *logger.Logger
	pwCfg    config.PasswordConfig
}

// NewService wires the identity service.
func NewService(client *db.Client, repo Repository, auditSvc audit.Service, logg *logger.Logger, pwCfg config.PasswordConfig) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, auditSvc: auditSvc, logg: logg, pwCfg: pwCfg}, nil
}

// Initialize creates the Owner. It fails once any user exists; the
// facility is set up exactly once.
func (s *service) Initialize(ctx context.Context, input InitializeInput) (*models.User, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if len(input.Password) < s.pwCfg.MinLength {
		return nil, pkgerrors.New(pkgerrors.CodeWeakPassword,
			fmt.Sprintf("password must be at least %d characters", s.pwCfg.MinLength))
	}

	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyInitialized, "owner account already exists")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	owner := &models.User{
		Name:         input.Name,
		LoginID:      normalizeLoginID(input.LoginID),
		PasswordHash: hash,
		Role:         enums.UserRoleOwner,
		Phone:        optional(input.Phone),
	}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, owner); err != nil {
			return fmt.Errorf("creating owner: %w", err)
		}
		return s.auditSvc.RecordInTx(ctx, tx, owner.ID, owner.Name, enums.AuditActionCreateUser, "system initialized")
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithActor(ctx, owner.ID.String(), owner.Name), "owner account initialized")
	return owner, nil
}

func (s *service) Login(ctx context.Context, loginID, password string) (*models.User, error) {
	user, err := s.repo.FindUserByLoginID(ctx, loginID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account with that login id")
	}
	if user.Disabled {
		return nil, pkgerrors.New(pkgerrors.CodeAccountDisabled, "account is disabled")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "wrong password")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ReplaceSession(ctx, &models.Session{UserID: user.ID}); err != nil {
			return fmt.Errorf("replacing session: %w", err)
		}
		return s.auditSvc.RecordInTx(ctx, tx, user.ID, user.Name, enums.AuditActionLogin, "")
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithActor(ctx, user.ID.String(), user.Name), "login")
	return user, nil
}

func (s *service) Logout(ctx context.Context) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearSession(ctx); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		return s.auditSvc.RecordInTx(ctx, tx, user.ID, user.Name, enums.AuditActionLogout, "")
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithActor(ctx, user.ID.String(), user.Name), "logout")
	return nil
}

// CurrentUser resolves the active session, if any.
func (s *service) CurrentUser(ctx context.Context) (*models.User, error) {
	session, err := s.repo.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	return s.repo.FindUserByID(ctx, session.UserID)
}

// CreateSupervisor returns the new user plus the temporary password.
// The password is shown exactly once; only the hash is stored.
func (s *service) CreateSupervisor(ctx context.Context, actor *models.User, input CreateSupervisorInput) (*models.User, string, error) {
	if err := requireOwner(actor); err != nil {
		return nil, "", err
	}
	if err := validate.Struct(input); err != nil {
		return nil, "", err
	}

	handle := normalizeLoginID(input.LoginID)
	existing, err := s.repo.FindUserByLoginID(ctx, handle)
	if err != nil {
		return nil, "", fmt.Errorf("checking login id: %w", err)
	}
	if existing != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeDuplicateLoginID,
			fmt.Sprintf("login id %q is taken", handle))
	}

	tempPassword, err := security.GenerateTempPassword(s.pwCfg.TempLength)
	if err != nil {
		return nil, "", fmt.Errorf("generating temp password: %w", err)
	}
	hash, err := security.HashPassword(tempPassword, s.pwCfg)
	if err != nil {
		return nil, "", fmt.Errorf("hashing temp password: %w", err)
	}

	supervisor := &models.User{
		Name:         input.Name,
		LoginID:      handle,
		PasswordHash: hash,
		Role:         enums.UserRoleSupervisor,
		Phone:        optional(input.Phone),
		EmployeeCode: optional(input.EmployeeCode),
		Email:        optional(input.Email),
		FirstLogin:   true,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, supervisor); err != nil {
			return fmt.Errorf("creating supervisor: %w", err)
		}
		details := fmt.Sprintf("supervisor %s (%s)", supervisor.Name, supervisor.LoginID)
		return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionCreateUser, details)
	})
	if err != nil {
		return nil, "", err
	}

	s.logg.Info(s.logg.WithActor(ctx, actor.ID.String(), actor.Name),
		fmt.Sprintf("supervisor created: %s", supervisor.LoginID))
	return supervisor, tempPassword, nil
}

// ToggleStatus flips a user's disabled flag. The Owner account is
// untouchable: toggling it returns the user unchanged.
func (s *service) ToggleStatus(ctx context.Context, actor *models.User, targetID uuid.UUID) (*models.User, error) {
	if err := requireOwner(actor); err != nil {
		return nil, err
	}

	target, err := s.repo.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if target.Role == enums.UserRoleOwner {
		return target, nil
	}

	target.Disabled = !target.Disabled
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveUser(ctx, target); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		details := fmt.Sprintf("%s disabled=%t", target.LoginID, target.Disabled)
		return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionDisableUser, details)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// UpdatePassword is the unconditional reset path: forced first-login
// resets and owner-mediated recovery. It clears the first-login flag.
func (s *service) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if len(newPassword) < s.pwCfg.MinLength {
		return pkgerrors.New(pkgerrors.CodeWeakPassword,
			fmt.Sprintf("password must be at least %d characters", s.pwCfg.MinLength))
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	hash, err := security.HashPassword(newPassword, s.pwCfg)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.FirstLogin = false

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		return s.auditSvc.RecordInTx(ctx, tx, user.ID, user.Name, enums.AuditActionResetPassword, "")
	})
}

// ChangePassword verifies the current password first.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	ok, err := security.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeIncorrectPassword, "current password does not match")
	}
	if len(newPassword) < s.pwCfg.MinLength {
		return pkgerrors.New(pkgerrors.CodeWeakPassword,
			fmt.Sprintf("password must be at least %d characters", s.pwCfg.MinLength))
	}

	hash, err := security.HashPassword(newPassword, s.pwCfg)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.FirstLogin = false

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
		return s.auditSvc.RecordInTx(ctx, tx, user.ID, user.Name, enums.AuditActionPasswordChange, "")
	})
}

func (s *service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *service) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return s.repo.FindUserByLoginID(ctx, loginID)
}

func requireOwner(actor *models.User) error {
	if actor == nil {
		return fmt.Errorf("actor is required")
	}
	if actor.Role != enums.UserRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}
	return nil
}

func normalizeLoginID(loginID string) string {
	return strings.ToLower(strings.TrimSpace(loginID))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
