package repositories

import (
	"context"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
)

type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type adminUserRepo struct {
	db Database
}

func NewAdminUserRepo(db Database) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role).
		Scan(&user.CreatedAt)
	return translateError(err)
}

func (r *adminUserRepo) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := `SELECT id, username, email, password_hash, role, last_login, created_at FROM admin_users WHERE username = $1`
	u := &models.AdminUser{}
	err := r.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.LastLogin, &u.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *adminUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	query := `SELECT id, username, email, password_hash, role, last_login, created_at FROM admin_users WHERE id = $1`
	u := &models.AdminUser{}
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.LastLogin, &u.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *adminUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.Exec(ctx, `UPDATE admin_users SET last_login = NOW() WHERE id = $1`, id))
}

func (r *adminUserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count)
	return count, err
}
