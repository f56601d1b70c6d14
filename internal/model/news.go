package model

import "time"

// News mirrors the `news` table.  CategoryID is nullable: deleting a
// category detaches its articles instead of deleting them.
type News struct {
	ID         uint64
	Title      string
	Slug       string
	Content    string
	ImageURL   string
	IsActive   bool
	CategoryID *uint64
	UserID     uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewsAuthor is the author embed in news responses.
type NewsAuthor struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// NewsCategory is the category embed in news responses.
type NewsCategory struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// NewsItem is a news row joined with its author and (optional) category,
// shaped for API responses.
type NewsItem struct {
	ID        uint64        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Content   string        `json:"content"`
	ImageURL  string        `json:"imageUrl"`
	IsActive  bool          `json:"isActive"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Author    NewsAuthor    `json:"user"`
	Category  *NewsCategory `json:"category"`
}

// NewsPage is a paginated news listing.
type NewsPage struct {
	Items []NewsItem `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int64      `json:"pages"`
}
