package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/news-cms/internal/model"
)

// NewsRepo persists news articles.
type NewsRepo struct{ DB *sql.DB }

func NewNewsRepo(db *sql.DB) *NewsRepo { return &NewsRepo{DB: db} }

// NewsQuery defines filters, sorting and pagination for news listings.
type NewsQuery struct {
	CategoryID *uint64
	IsActive   *bool
	Page       int
	Limit      int
	SortBy     string
	Order      string
}

const (
	newsDefaultPage  = 1
	newsDefaultLimit = 10
	newsMaxLimit     = 50
)

// sortColumns whitelists client-supplied sort keys against actual columns so
// the ORDER BY clause can never be injected.
var sortColumns = map[string]string{
	"createdAt": "n.created_at",
	"updatedAt": "n.updated_at",
	"title":     "n.title",
}

// Normalize clamps pagination and resolves sort inputs to safe SQL.  Unknown
// sort keys fall back to newest-first.
func (q *NewsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = newsDefaultPage
	}
	if q.Limit < 1 {
		q.Limit = newsDefaultLimit
	}
	if q.Limit > newsMaxLimit {
		q.Limit = newsMaxLimit
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "createdAt"
	}
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = "desc"
	}
}

const newsSelect = `SELECT n.id, n.title, n.slug, n.content, n.image_url, n.is_active,
	n.created_at, n.updated_at,
	u.id, u.email, u.full_name,
	c.id, c.title, c.slug
FROM news n
JOIN users u ON u.id = n.user_id
LEFT JOIN categories c ON c.id = n.category_id`

// List returns a page of news rows and the total count matching the filters.
func (r *NewsRepo) List(ctx context.Context, q NewsQuery) ([]model.NewsItem, int64, error) {
	q.Normalize()

	where := []string{}
	args := []any{}
	if q.CategoryID != nil {
		where = append(where, "n.category_id=?")
		args = append(args, *q.CategoryID)
	}
	if q.IsActive != nil {
		where = append(where, "n.is_active=?")
		args = append(args, *q.IsActive)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM news n WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := newsSelect + " WHERE " + cond +
		" ORDER BY " + sortColumns[q.SortBy] + " " + strings.ToUpper(q.Order) +
		" LIMIT ? OFFSET ?"
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []model.NewsItem{}
	for rows.Next() {
		item, err := scanNewsItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// GetByID fetches one article with its author and category.
func (r *NewsRepo) GetByID(ctx context.Context, id uint64) (model.NewsItem, error) {
	row := r.DB.QueryRowContext(ctx, newsSelect+" WHERE n.id=? LIMIT 1", id)
	item, err := scanNewsItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewsItem{}, ErrNotFound
	}
	return item, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanNewsItem(row rowScanner) (model.NewsItem, error) {
	var (
		item     model.NewsItem
		catID    sql.NullInt64
		catTitle sql.NullString
		catSlug  sql.NullString
	)
	err := row.Scan(&item.ID, &item.Title, &item.Slug, &item.Content, &item.ImageURL,
		&item.IsActive, &item.CreatedAt, &item.UpdatedAt,
		&item.Author.ID, &item.Author.Email, &item.Author.FullName,
		&catID, &catTitle, &catSlug)
	if err != nil {
		return model.NewsItem{}, err
	}
	if catID.Valid {
		item.Category = &model.NewsCategory{
			ID:    uint64(catID.Int64),
			Title: catTitle.String,
			Slug:  catSlug.String,
		}
	}
	return item, nil
}

// Create inserts an article and returns the stored row.
func (r *NewsRepo) Create(ctx context.Context, n model.News) (model.NewsItem, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO news (title, slug, content, image_url, is_active, category_id, user_id) VALUES (?,?,?,?,?,?,?)",
		n.Title, n.Slug, n.Content, n.ImageURL, n.IsActive, n.CategoryID, n.UserID)
	if err != nil {
		if isDuplicate(err) {
			return model.NewsItem{}, ErrSlugExists
		}
		return model.NewsItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.NewsItem{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// NewsUpdate carries the optional fields of a news patch.  Nil means "leave
// unchanged".
type NewsUpdate struct {
	Title      *string
	Slug       *string
	Content    *string
	ImageURL   *string
	IsActive   *bool
	CategoryID *uint64
}

// Update applies a partial update and returns the fresh row.
func (r *NewsRepo) Update(ctx context.Context, id uint64, upd NewsUpdate) (model.NewsItem, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Slug != nil {
		add("slug", *upd.Slug)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if upd.CategoryID != nil {
		add("category_id", *upd.CategoryID)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE news SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		if isDuplicate(err) {
			return model.NewsItem{}, ErrSlugExists
		}
		return model.NewsItem{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an article.
func (r *NewsRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM news WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
