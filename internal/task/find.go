package task

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
)

// idPrefixRe matches the numeric ID prefix of a task filename.
var idPrefixRe = regexp.MustCompile(`^(\d+)-`)

// FindByID scans the tasks directory for a file matching the given ID.
// Returns the full path to the task file.
func FindByID(tasksDir string, id int) (string, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return "", fmt.Errorf("reading tasks directory: %w", err)
	}

	idStr := strconv.Itoa(id)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		m := idPrefixRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if strings.TrimLeft(m[1], "0") == idStr {
			return filepath.Join(tasksDir, name), nil
		}
	}

	return "", clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// ReadWarning describes a file that could not be parsed during lenient reading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// ReadDir reads every task file in tasksDir, skipping malformed files
// instead of aborting. A task file without an id takes the one encoded in
// its filename. A missing directory yields no tasks.
func ReadDir(tasksDir string) ([]Input, []ReadWarning, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var inputs []Input
	var warnings []ReadWarning
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		in, readErr := Read(filepath.Join(tasksDir, entry.Name()))
		if readErr != nil {
			warnings = append(warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		if in.ID == nil {
			if id, idErr := IDFromFilename(entry.Name()); idErr == nil {
				in.ID = &id
			}
		}
		inputs = append(inputs, *in)
	}

	return inputs, warnings, nil
}

// IDFromFilename extracts the numeric ID from a task filename.
func IDFromFilename(filename string) (int, error) {
	matches := idPrefixRe.FindStringSubmatch(filename)
	if len(matches) < 2 { //nolint:mnd // regex capture group
		return 0, fmt.Errorf("cannot extract ID from filename %q", filename)
	}
	return strconv.Atoi(matches[1])
}

// NextID returns one more than the highest id found among task filenames.
func NextID(tasksDir string) (int, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("reading tasks directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		if id, idErr := IDFromFilename(entry.Name()); idErr == nil && id > highest {
			highest = id
		}
	}
	return highest + 1, nil
}
