package report

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/taskrank/internal/engine"
	"github.com/twiced-technology-gmbh/taskrank/internal/filelock"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

const (
	historyFileMode = 0o600
	topEntries      = 3
)

// Entry is one line of the analysis history.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Strategy   priority.Strategy `json:"strategy"`
	Tasks      int               `json:"tasks"`
	Top        []int             `json:"top"`
	WithIssues int               `json:"with_issues"`
}

// History appends one Entry per analysis to a JSON-lines file, keeping at
// most maxEntries lines. It implements engine.Recorder.
type History struct {
	path       string
	maxEntries int
	now        func() time.Time
}

var _ engine.Recorder = (*History)(nil)

// NewHistory returns a History writing to path. A non-positive maxEntries
// disables truncation.
func NewHistory(path string, maxEntries int) *History {
	return &History{path: path, maxEntries: maxEntries, now: time.Now}
}

// Record appends an entry for res.
func (h *History) Record(_ context.Context, res *engine.Result) error {
	entry := Entry{
		Timestamp: h.now().UTC(),
		Strategy:  res.Strategy,
		Tasks:     len(res.Tasks),
		Top:       make([]int, 0, topEntries),
	}
	for _, t := range priority.Top(res.Tasks, topEntries) {
		entry.Top = append(entry.Top, t.ID)
	}
	entry.WithIssues = Summarize(res.Tasks, res.Strategy).WithIssues

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling history entry: %w", err)
	}

	return filelock.Guard(h.path, func() error {
		if err := appendLine(h.path, data); err != nil {
			return err
		}
		// Truncation is best-effort.
		_ = truncate(h.path, h.maxEntries)
		return nil
	})
}

// Read returns the last n entries, oldest first. A missing file yields no
// entries; n <= 0 returns everything. Unparseable lines are skipped.
func (h *History) Read(n int) ([]Entry, error) {
	lines, err := readLines(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func appendLine(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, historyFileMode) //nolint:gosec // history path from trusted workspace
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history entry: %w", err)
	}
	return nil
}

// truncate rewrites the file keeping only the most recent maxEntries lines.
func truncate(path string, maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= maxEntries {
		return nil
	}
	lines = lines[len(lines)-maxEntries:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(buf.String()), historyFileMode)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
