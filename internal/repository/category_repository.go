package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/news-cms/internal/model"
)

// CategoryRepo persists categories.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category and returns the stored record.
func (r *CategoryRepo) Create(ctx context.Context, title, slug string) (model.Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (title, slug) VALUES (?,?)", title, slug)
	if err != nil {
		if isDuplicate(err) {
			return model.Category{}, ErrSlugExists
		}
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var cat model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, slug, created_at FROM categories WHERE id=? LIMIT 1", id).
		Scan(&cat.ID, &cat.Title, &cat.Slug, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return cat, err
}

// List returns all categories, newest first, each carrying its recent news.
func (r *CategoryRepo) List(ctx context.Context) ([]model.CategoryWithNews, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, slug, created_at FROM categories ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CategoryWithNews
	for rows.Next() {
		var cat model.CategoryWithNews
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Slug, &cat.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		news, err := r.newsOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].News = news
	}
	return out, nil
}

// GetWithNews fetches one category together with its recent news.
func (r *CategoryRepo) GetWithNews(ctx context.Context, id uint64) (model.CategoryWithNews, error) {
	cat, err := r.GetByID(ctx, id)
	if err != nil {
		return model.CategoryWithNews{}, err
	}
	news, err := r.newsOf(ctx, id)
	if err != nil {
		return model.CategoryWithNews{}, err
	}
	return model.CategoryWithNews{Category: cat, News: news}, nil
}

func (r *CategoryRepo) newsOf(ctx context.Context, id uint64) ([]model.CategoryNews, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, created_at FROM news WHERE category_id=? ORDER BY created_at DESC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	news := []model.CategoryNews{}
	for rows.Next() {
		var n model.CategoryNews
		if err := rows.Scan(&n.ID, &n.Title, &n.CreatedAt); err != nil {
			return nil, err
		}
		news = append(news, n)
	}
	return news, rows.Err()
}

// Update applies a partial update.  Nil fields are left unchanged.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, title, slug *string) (model.Category, error) {
	sets := []string{}
	args := []any{}
	if title != nil {
		sets = append(sets, "title=?")
		args = append(args, *title)
	}
	if slug != nil {
		sets = append(sets, "slug=?")
		args = append(args, *slug)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		if isDuplicate(err) {
			return model.Category{}, ErrSlugExists
		}
		return model.Category{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category.  News referencing it are detached, not deleted.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE news SET category_id=NULL WHERE category_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
