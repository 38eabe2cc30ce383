package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sercamembert/rudyrudy/types"
)

// UserRepository handles persistence for onboarding profiles.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT id, email, username, name, bio, phone_number, image_url, created_at, updated_at
		FROM users
		WHERE id = $1`
	var (
		user  types.User
		bio   sql.NullString
		phone sql.NullString
		image sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Name,
		&bio,
		&phone,
		&image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.Bio = bio.String
	user.PhoneNumber = phone.String
	user.ImageURL = image.String
	return user, nil
}

// Upsert inserts the user or overwrites the mutable fields of an existing
// row with the same id. Atomicity per id is the database's: a single
// INSERT ... ON CONFLICT statement.
func (r *UserRepository) Upsert(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, username, name, bio, phone_number, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			phone_number = EXCLUDED.phone_number,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Username,
		user.Name,
		nullString(user.Bio),
		nullString(user.PhoneNumber),
		nullString(user.ImageURL),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
