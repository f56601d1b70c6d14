package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/middleware"
	"github.com/iliyamo/news-cms/internal/model"
	"github.com/iliyamo/news-cms/internal/queue"
	"github.com/iliyamo/news-cms/internal/repository"
	"github.com/iliyamo/news-cms/internal/storage"
	"github.com/iliyamo/news-cms/internal/utils"
)

// NewsHandler exposes the news CRUD surface.  Listing and reading are
// public; create, update and delete are ADMIN-only (enforced by the
// router).  Create and update accept multipart form data so an image can
// ride along with the fields.
type NewsHandler struct {
	News       *repository.NewsRepo
	Categories *repository.CategoryRepo
	Images     *storage.ImageStore
}

func NewNewsHandler(news *repository.NewsRepo, categories *repository.CategoryRepo, images *storage.ImageStore) *NewsHandler {
	return &NewsHandler{News: news, Categories: categories, Images: images}
}

// List handles GET /v1/news.  Only active articles are returned unless
// isActive=false is asked for explicitly.
func (h *NewsHandler) List(c echo.Context) error {
	q := repository.NewsQuery{
		Page:   atoiDefault(c.QueryParam("page"), 1),
		Limit:  atoiDefault(c.QueryParam("limit"), 10),
		SortBy: c.QueryParam("sortBy"),
		Order:  strings.ToLower(c.QueryParam("order")),
	}
	active := c.QueryParam("isActive") != "false"
	q.IsActive = &active
	if s := c.QueryParam("categoryId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoryId"})
		}
		q.CategoryID = &id
	}
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, total, err := h.News.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	pages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		pages++
	}
	return c.JSON(http.StatusOK, echo.Map{"news": model.NewsPage{
		Items: items,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: pages,
	}})
}

// Get handles GET /v1/news/:id.  Inactive articles are hidden from this
// public endpoint: they 404 exactly like missing ones.
func (h *NewsHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	item, err := h.News.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !item.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"news": item})
}

// Create handles POST /v1/news (multipart).  An image is required on
// create; the authenticated admin becomes the author.
func (h *NewsHandler) Create(c echo.Context) error {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	if title == "" || content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image is required"})
	}
	imageURL, err := h.Images.Save(file)
	if err != nil {
		return uploadError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var categoryID *uint64
	if s := c.FormValue("categoryId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoryId"})
		}
		if _, err := h.Categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		categoryID = &id
	}

	item, err := h.News.Create(ctx, model.News{
		Title:      title,
		Slug:       h.slugFor(title),
		Content:    content,
		ImageURL:   imageURL,
		IsActive:   c.FormValue("isActive") == "true",
		CategoryID: categoryID,
		UserID:     uid,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create news failed"})
	}
	if item.IsActive {
		h.announce(item)
	}
	return c.JSON(http.StatusCreated, echo.Map{"news": item})
}

// Update handles PATCH /v1/news/:id (multipart, every field optional).  A
// changed title regenerates the slug; a new image replaces the URL.
func (h *NewsHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	existing, err := h.News.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	upd := repository.NewsUpdate{}
	if title := strings.TrimSpace(c.FormValue("title")); title != "" && title != existing.Title {
		upd.Title = &title
		slug := h.slugFor(title)
		upd.Slug = &slug
	}
	if content := strings.TrimSpace(c.FormValue("content")); content != "" {
		upd.Content = &content
	}
	if s := c.FormValue("isActive"); s != "" {
		active := s == "true"
		upd.IsActive = &active
	}
	if s := c.FormValue("categoryId"); s != "" {
		cid, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoryId"})
		}
		if _, err := h.Categories.GetByID(ctx, cid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		upd.CategoryID = &cid
	}
	if file, err := c.FormFile("image"); err == nil {
		imageURL, err := h.Images.Save(file)
		if err != nil {
			return uploadError(c, err)
		}
		upd.ImageURL = &imageURL
	}

	item, err := h.News.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !existing.IsActive && item.IsActive {
		h.announce(item)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": item})
}

// Delete handles DELETE /v1/news/:id.
func (h *NewsHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.News.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "news deleted"})
}

// slugFor derives a slug from the title, falling back to a random one for
// titles with no latin letters or digits.
func (h *NewsHandler) slugFor(title string) string {
	if slug := utils.Slugify(title); slug != "" {
		return slug
	}
	return "news-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// announce publishes the news.published event in the background.  The
// response never waits on the broker.
func (h *NewsHandler) announce(item model.NewsItem) {
	ev := queue.NewsPublishedEvent{
		NewsID:      item.ID,
		Title:       item.Title,
		Slug:        item.Slug,
		AuthorEmail: item.Author.Email,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if item.Category != nil {
		ev.Category = item.Category.Title
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishNewsPublished(ctx, ev)
	}()
}

func uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large"})
	case errors.Is(err, storage.ErrUnsupportedType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
