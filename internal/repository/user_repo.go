package repository

import (
	"context"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Disable(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// SetRefreshSession establishes a fresh refresh session on login,
	// replacing whatever session existed before.
	SetRefreshSession(ctx context.Context, id uuid.UUID, nonce string, expiresAt, loginAt time.Time) error

	// RotateRefreshNonce atomically swaps the stored nonce for a new one.
	// The update only matches when the user is ACTIVE, still holds oldNonce,
	// and the session has not expired — a single conditional UPDATE, so two
	// concurrent refresh calls can never both succeed. Returns the number of
	// rows matched (0 means the refresh must be rejected).
	RotateRefreshNonce(ctx context.Context, id uuid.UUID, oldNonce, newNonce string, expiresAt time.Time) (int64, error)

	// ClearRefreshSession revokes any outstanding refresh token on logout.
	ClearRefreshSession(ctx context.Context, id uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("status = ?", model.UserStatusActive).Find(&users).Error
	return users, err
}

func (r *userRepo) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Find(&users).Error
	return users, err
}

func (r *userRepo) Disable(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("status", model.UserStatusDisabled).Error
}

func (r *userRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("status", model.UserStatusActive).Error
}

func (r *userRepo) SetRefreshSession(ctx context.Context, id uuid.UUID, nonce string, expiresAt, loginAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"refresh_nonce":      nonce,
			"refresh_expires_at": expiresAt,
			"last_login_at":      loginAt,
		}).Error
}

func (r *userRepo) RotateRefreshNonce(ctx context.Context, id uuid.UUID, oldNonce, newNonce string, expiresAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND status = ? AND refresh_nonce = ? AND refresh_expires_at > ?",
			id, model.UserStatusActive, oldNonce, time.Now()).
		Updates(map[string]interface{}{
			"refresh_nonce":      newNonce,
			"refresh_expires_at": expiresAt,
		})
	return res.RowsAffected, res.Error
}

func (r *userRepo) ClearRefreshSession(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"refresh_nonce":      nil,
			"refresh_expires_at": nil,
		}).Error
}
