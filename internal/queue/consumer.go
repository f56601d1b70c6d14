package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishLogFile = "logs/news.log"

// StartPublishedConsumer connects to RabbitMQ, declares the news.published
// queue and consumes it forever, appending one human-readable line per event
// to logs/news.log.  It runs a reconnect loop with exponential backoff and
// never returns under normal operation; call it from its own goroutine.
// Malformed messages are rejected without requeue so they cannot wedge the
// queue.
func StartPublishedConsumer() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("news-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("news-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(PublishedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(PublishedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		if err := handleDelivery(d.Body); err != nil {
			log.Printf("news-consumer: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleDelivery(body []byte) error {
	var ev NewsPublishedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	line := fmt.Sprintf("%s published news #%d %q (slug=%s category=%s author=%s)\n",
		time.Now().UTC().Format(time.RFC3339), ev.NewsID, ev.Title, ev.Slug, ev.Category, ev.AuthorEmail)
	return appendLine(publishLogFile, line)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
