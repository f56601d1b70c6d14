package model

import "time"

// Category mirrors the `categories` table.  Slug is unique and derived from
// the title when not supplied explicitly.
type Category struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryNews is the short news listing embedded in category responses.
type CategoryNews struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryWithNews is a category together with its most recent articles.
type CategoryWithNews struct {
	Category
	News []CategoryNews `json:"news"`
}
