package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/storage/db"
)

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	Create(ctx context.Context, user model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, full_name, hashed_password, roles, is_active, last_login, created_at`

func (r userRepository) Create(ctx context.Context, user model.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, hashed_password, roles, is_active, created_at)
		VALUES (@id, @username, @email, @full_name, @hashed_password, @roles, @is_active, @created_at)
	`, pgx.NamedArgs{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"full_name":       user.FullName,
		"hashed_password": user.HashedPassword,
		"roles":           user.Roles,
		"is_active":       user.IsActive,
		"created_at":      user.CreatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.UserConflictErr.WrapParent(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r userRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, `id = @value`, id)
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, `username = @value`, username)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, `email = @value`, email)
}

func (r userRepository) getBy(ctx context.Context, predicate string, value any) (model.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+predicate+`
	`, pgx.NamedArgs{"value": value})

	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.HashedPassword,
		&u.Roles,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, apperr.UserNotFoundErr
	}
	if err != nil {
		return model.User{}, fmt.Errorf("select user: %w", err)
	}

	return u, nil
}

func (r userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login = @last_login
		WHERE id = @id
	`, pgx.NamedArgs{"id": id, "last_login": at})
	if err != nil {
		return fmt.Errorf("update user last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.UserNotFoundErr
	}

	return nil
}
