package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// FileSource implements MessageSource over message files. Each file holds one
// or more messages separated by Separator lines.
type FileSource struct {
	files      []string
	receivedAt time.Time

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentMod     time.Time
	currentIndex   int
	fileIndex      int
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithReceivedAt stamps every message with t instead of the file's
// modification time.
func WithReceivedAt(t time.Time) FileSourceOption {
	return func(s *FileSource) {
		s.receivedAt = t
	}
}

// NewFileSource creates a MessageSource that reads the given files in order.
func NewFileSource(files []string, opts ...FileSourceOption) *FileSource {
	s := &FileSource{
		files:     files,
		fileIndex: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next message.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Message, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		text, ok, err := s.readMessage()
		if err != nil {
			return nil, err
		}
		if ok {
			s.currentIndex++
			return &Message{
				Text:       text,
				Source:     s.currentSource,
				Index:      s.currentIndex,
				ReceivedAt: s.stamp(),
			}, nil
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// readMessage collects lines up to the next separator. It reports false once
// the file has no further non-blank message.
func (s *FileSource) readMessage() (string, bool, error) {
	var lines []string
	for s.currentScanner.Scan() {
		line := s.currentScanner.Text()
		if strings.TrimSpace(line) == Separator {
			if text := strings.Join(lines, "\n"); !isBlank(text) {
				return text, true, nil
			}
			lines = lines[:0]
			continue
		}
		lines = append(lines, line)
	}
	if err := s.currentScanner.Err(); err != nil {
		return "", false, fmt.Errorf("reading %s: %w", s.currentSource, err)
	}
	text := strings.Join(lines, "\n")
	return text, !isBlank(text), nil
}

func (s *FileSource) stamp() time.Time {
	if !s.receivedAt.IsZero() {
		return s.receivedAt
	}
	return s.currentMod
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening message file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.currentSource = path
	s.currentMod = info.ModTime()
	s.currentIndex = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
