package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/repository"
	"github.com/iliyamo/news-cms/internal/utils"
)

// CategoryHandler exposes category CRUD.  Reads require authentication;
// writes additionally require the ADMIN role (enforced by the router).
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type createCategoryReq struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type updateCategoryReq struct {
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
}

// List handles GET /v1/categories.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	categories, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

// Get handles GET /v1/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.GetWithNews(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"category": cat})
}

// Create handles POST /v1/categories.  The slug is taken as-is when given
// and derived from the title otherwise.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot derive slug from title, provide one"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.Create(ctx, req.Title, slug)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"category": cat})
}

// Update handles PATCH /v1/categories/:id.  A new title without an explicit
// slug regenerates the slug.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	slug := req.Slug
	if slug == nil && req.Title != nil {
		s := utils.Slugify(*req.Title)
		if s == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot derive slug from title, provide one"})
		}
		slug = &s
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.Update(ctx, id, req.Title, slug)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrSlugExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"category": cat})
}

// Delete handles DELETE /v1/categories/:id.  Articles in the category are
// detached rather than removed.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
