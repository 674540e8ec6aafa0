// Package source reads caregiver messages from files, arguments and stdin.
package source

import (
	"context"
	"strings"
	"time"
)

// Separator is the line that separates messages within one file or stream.
const Separator = "---"

// Message is one caregiver message to parse.
type Message struct {
	// Text is the raw message body.
	Text string

	// Source names where the message came from (file path, "stdin", "args").
	Source string

	// Index is the 1-based position of the message within its source.
	Index int

	// ReceivedAt is the reference instant for resolving clock times.
	ReceivedAt time.Time
}

// MessageSource provides an iterator over messages.
// Implementations are for sequential access, not concurrent use.
type MessageSource interface {
	// Next returns the next message.
	// Returns io.EOF when no more messages are available.
	// Blank messages are skipped.
	Next(ctx context.Context) (*Message, error)

	// Close releases any resources held by the source.
	Close() error
}

// SplitMessages splits text on Separator lines and drops blank messages.
func SplitMessages(text string) []string {
	var (
		messages []string
		current  []string
	)
	flush := func() {
		body := strings.TrimSpace(strings.Join(current, "\n"))
		if body != "" {
			messages = append(messages, body)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == Separator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return messages
}
