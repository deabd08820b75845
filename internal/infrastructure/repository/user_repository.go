package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	userColumns = `id, email, name, password_hash, google_id, profile_image, profile_image_key, created_at`

	prefixedUserColumns = `u.id, u.email, u.name, u.password_hash, u.google_id, u.profile_image, u.profile_image_key, u.created_at`

	insertUserQuery = `
INSERT INTO users (id, email, name, password_hash, google_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns + `;`

	selectUserByIdQuery = `
SELECT ` + userColumns + ` FROM users
WHERE id = $1;`

	selectUserByEmailQuery = `
SELECT ` + userColumns + ` FROM users
WHERE lower(email) = lower($1);`

	linkGoogleQuery = `
UPDATE users
SET google_id = $2
WHERE id = $1
RETURNING ` + userColumns + `;`

	updateProfileQuery = `
UPDATE users
SET name              = COALESCE($2, name),
    profile_image     = COALESCE($3, profile_image),
    profile_image_key = COALESCE($4, profile_image_key)
WHERE id = $1
RETURNING ` + userColumns + `;`

	selectUsersQuery = `
SELECT ` + userColumns + ` FROM users
ORDER BY name ASC;`
)

type UserRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, log *zap.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

func (r *UserRepository) Create(ctx context.Context, d *dto.CreateUserDTO) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, insertUserQuery,
		d.Id,
		d.Email,
		d.Name,
		d.PasswordHash,
		d.GoogleId,
	))
	if err != nil {
		r.log.Error("failed to insert user", zap.String("email", d.Email), zap.Error(err))
		return nil, handleDBError(err)
	}
	return user, nil
}

func (r *UserRepository) GetById(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByIdQuery, id))
	if err != nil {
		return nil, handleDBError(err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByEmailQuery, email))
	if err != nil {
		return nil, handleDBError(err)
	}
	return user, nil
}

func (r *UserRepository) LinkGoogle(ctx context.Context, d *dto.LinkGoogleDTO) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, linkGoogleQuery, d.UserId, d.GoogleId))
	if err != nil {
		r.log.Error("failed to link google account", zap.String("user_id", d.UserId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, d *dto.UpdateProfileDTO) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, updateProfileQuery,
		d.UserId,
		d.Name,
		d.ProfileImage,
		d.ProfileImageKey,
	))
	if err != nil {
		r.log.Error("failed to update profile", zap.String("user_id", d.UserId), zap.Error(err))
		return nil, handleDBError(err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, selectUsersQuery)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		users = append(users, user)
	}
	return users, handleDBError(rows.Err())
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	if err := row.Scan(userDest(u)...); err != nil {
		return nil, err
	}
	return u, nil
}

// userDest порядок совпадает с userColumns
func userDest(u *domain.User) []any {
	return []any{
		&u.Id,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.GoogleId,
		&u.ProfileImage,
		&u.ProfileImageKey,
		&u.CreatedAt,
	}
}
