package repositories

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// HistoryRepository persists chat history as an append-only plain-text
// file, one pre-formatted line per record. Consumers treat records as
// opaque text; there are no structured fields to migrate.
type HistoryRepository struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

func NewHistoryRepository(path string, log *slog.Logger) *HistoryRepository {
	return &HistoryRepository{path: path, log: log}
}

// Append writes one line to the end of the log. The file is opened per
// call so a deleted or rotated log never wedges the chat path.
func (h *HistoryRepository) Append(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line + "\n")
	return err
}

// Tail returns the last n non-empty lines in their original order.
// A missing log file is a normal "no history yet" outcome, not an error,
// and n <= 0 yields an empty result.
func (h *HistoryRepository) Tail(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	h.mu.Lock()
	data, err := os.ReadFile(h.path)
	h.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := lo.Filter(strings.Split(string(data), "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
