package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/news-cms/internal/model"
)

// UserRepo persists users.  It also acts as the session store: the hash of
// the single currently-valid refresh token lives on the user row, so issuing
// a new token pair overwrites (and thereby invalidates) the previous session.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, email, full_name, password_hash, role, refresh_token_hash, created_at, updated_at"

// Create inserts a user and returns the stored record.
func (r *UserRepo) Create(ctx context.Context, email, fullName, passwordHash, role string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, full_name, password_hash, role) VALUES (?,?,?,?)",
		email, fullName, passwordHash, role)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
		&u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns all users ordered by newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role,
			&u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserUpdate carries the optional fields of a user patch.  Nil means "leave
// unchanged".  PasswordHash set implies the session must be cleared, which
// Update performs in the same statement.
type UserUpdate struct {
	Email        *string
	FullName     *string
	Role         *string
	PasswordHash *string
}

// Update applies a partial update and returns the fresh record.  Changing
// the password clears refresh_token_hash so every session is forced to
// re-authenticate.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	sets := []string{}
	args := []any{}
	if upd.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.FullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, *upd.FullName)
	}
	if upd.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *upd.Role)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash=?", "refresh_token_hash=NULL")
		args = append(args, *upd.PasswordHash)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean a no-op update; confirm existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user together with their news.  The two statements are
// wrapped in a transaction so a failure cannot leave orphaned articles.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM news WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// UpdateRefreshHash overwrites the stored refresh-token hash.  A nil hash
// clears the session (logout); clearing is idempotent.
func (r *UserRepo) UpdateRefreshHash(ctx context.Context, id uint64, hash *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=?", hash, id)
	return err
}

// SwapRefreshHash replaces the stored hash only if it still equals oldHash.
// It returns false when another request rotated (or a logout cleared) the
// session in the meantime, which makes concurrent refreshes admit exactly
// one winner.
func (r *UserRepo) SwapRefreshHash(ctx context.Context, id uint64, oldHash, newHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=? AND refresh_token_hash=?",
		newHash, id, oldHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
