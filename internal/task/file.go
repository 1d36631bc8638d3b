package task

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	fileMode      = 0o600
	maxSlugLength = 50
	filenamePad   = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Read parses a task file: YAML frontmatter holding the task fields,
// followed by an optional markdown body.
func Read(path string) (*Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // task path from trusted workspace
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", path, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}

	errs := &ValidationErrors{}
	in := inputFromMap(errs, "frontmatter", fields)
	if errs.HasErrors() {
		return nil, fmt.Errorf("invalid frontmatter in %s: %w", path, errs)
	}

	in.Body = body
	in.File = path
	return &in, nil
}

// Write serializes a task to a markdown file with YAML frontmatter.
func Write(path string, in *Input) error {
	fm, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if in.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(in.Body)
		if !strings.HasSuffix(in.Body, "\n") {
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, buf.Bytes(), fileMode)
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
// The file must start with "---\n".
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[4:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		if !strings.HasSuffix(rest, "\n---") {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
		idx = len(rest) - len("\n---")
	}

	body := ""
	if closingEnd := idx + len("\n---\n"); closingEnd < len(rest) {
		body = strings.TrimLeft(rest[closingEnd:], "\n")
	}

	return []byte(rest[:idx]), body, nil
}

// Filename builds "<padded id>-<slug>.md" from a task id and title.
func Filename(id int, title string) string {
	return fmt.Sprintf("%0*d-%s.md", filenamePad, id, slug(title))
}

// slug lowercases the title and collapses non-alphanumerics into hyphens,
// cutting at a word boundary when longer than maxSlugLength.
func slug(title string) string {
	s := strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(s) <= maxSlugLength {
		return s
	}
	cut := s[:maxSlugLength]
	if s[maxSlugLength] != '-' {
		if i := strings.LastIndex(cut, "-"); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, "-")
}
