// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// PublishedQueueName is the durable queue carrying news publication events.
const PublishedQueueName = "news.published"

// NewsPublishedEvent is published when an article goes live, either created
// active or activated by an update.  It carries enough for downstream
// consumers to log or notify without querying the primary database.
type NewsPublishedEvent struct {
	NewsID      uint64 `json:"news_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Category    string `json:"category,omitempty"`
	AuthorEmail string `json:"author_email"`
	PublishedAt string `json:"published_at"`
}
