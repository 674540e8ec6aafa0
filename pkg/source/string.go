package source

import (
	"context"
	"io"
	"time"
)

// StringSource serves messages held in memory, such as command arguments or
// stdin already read in full.
type StringSource struct {
	name       string
	receivedAt time.Time
	texts      []string
	pos        int
}

// NewStringSource creates a source named name over texts. Every message is
// stamped with receivedAt.
func NewStringSource(name string, receivedAt time.Time, texts ...string) *StringSource {
	return &StringSource{name: name, receivedAt: receivedAt, texts: texts}
}

// Next returns the next non-blank text.
func (s *StringSource) Next(ctx context.Context) (*Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.pos >= len(s.texts) {
			return nil, io.EOF
		}
		s.pos++
		text := s.texts[s.pos-1]
		if isBlank(text) {
			continue
		}
		return &Message{
			Text:       text,
			Source:     s.name,
			Index:      s.pos,
			ReceivedAt: s.receivedAt,
		}, nil
	}
}

// Close is a no-op.
func (s *StringSource) Close() error {
	return nil
}
