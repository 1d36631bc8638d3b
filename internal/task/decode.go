package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

// Format is the encoding of a batch document.
type Format int

const (
	// FormatJSON is a JSON document.
	FormatJSON Format = iota
	// FormatYAML is a YAML document.
	FormatYAML
	// FormatHCL is an HCL document with one task block per task.
	FormatHCL
)

// DetectFormat picks the format from the file extension, falling back to
// sniffing the first significant byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// ReadBatchFile reads and decodes a batch document from disk.
func ReadBatchFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path) //nolint:gosec // batch path supplied by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, clierr.Newf(clierr.InvalidInput, "batch file not found: %s", path).
				WithDetails(map[string]any{"path": path})
		}
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return DecodeBatch(data, DetectFormat(path, data))
}

// ReadBatch decodes a batch document from r.
func ReadBatch(r io.Reader) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}
	return DecodeBatch(data, DetectFormat("", data))
}

// DecodeBatch decodes either a bare list of tasks or an object with
// "strategy" and "tasks" keys; HCL documents use task blocks instead.
// Field values are coerced where the intent is unambiguous ("5" for an
// integer); every problem found is returned at once as *ValidationErrors.
func DecodeBatch(data []byte, format Format) (*Batch, error) {
	raw, err := unmarshalAny(data, format)
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidInput, "malformed batch document: %v", err)
	}

	errs := &ValidationErrors{}
	b := &Batch{}

	var items any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if s, ok := v["strategy"]; ok && s != nil {
			str, isStr := s.(string)
			if !isStr {
				errs.Add("strategy", "Not a valid string.")
			}
			b.Strategy = str
		}
		t, ok := v["tasks"]
		if !ok || t == nil {
			errs.Add("tasks", "This field is required.")
		}
		items = t
	case nil:
		errs.Add("tasks", "This field is required.")
	default:
		errs.Add("non_field_errors", "Invalid data. Expected a dictionary or a list.")
	}

	if items != nil {
		list, ok := items.([]any)
		if !ok {
			errs.Add("tasks", fmt.Sprintf("Expected a list of items but got type %q.", typeName(items)))
		}
		b.Tasks = make([]Input, 0, len(list))
		for i, item := range list {
			b.Tasks = append(b.Tasks, decodeInput(errs, fmt.Sprintf("tasks[%d]", i), item))
		}
	}

	if errs.HasErrors() {
		return b, errs
	}
	return b, nil
}

func unmarshalAny(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var v any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case FormatHCL:
		return unmarshalHCL(data)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeInput coerces one raw task object. The returned Input is always
// usable for positional reporting, even when errs gained entries.
func decodeInput(errs *ValidationErrors, prefix string, raw any) Input {
	m, ok := raw.(map[string]any)
	if !ok {
		errs.Add(prefix, fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeName(raw)))
		return Input{}
	}
	return inputFromMap(errs, prefix, m)
}

func inputFromMap(errs *ValidationErrors, prefix string, m map[string]any) Input {
	var in Input

	if v, ok := m["id"]; ok && v != nil {
		if id, isInt := toInt(v); isInt {
			in.ID = &id
		} else {
			errs.Add(prefix+".id", "A valid integer is required.")
		}
	}

	switch v, ok := m["title"]; {
	case !ok:
		errs.Add(prefix+".title", "This field is required.")
	case v == nil:
		errs.Add(prefix+".title", "This field may not be null.")
	default:
		s, isStr := v.(string)
		if !isStr {
			errs.Add(prefix+".title", "Not a valid string.")
			break
		}
		in.Title = strings.TrimSpace(s)
		validateTitle(errs, prefix, in.Title)
	}

	if v, ok := m["due_date"]; ok && v != nil {
		if d, isDate := toDate(v); isDate {
			in.DueDate = &d
			validateDueDate(errs, prefix, d)
		} else {
			errs.Add(prefix+".due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		}
	}

	if v, ok := m["estimated_hours"]; ok && v != nil {
		if h, isNum := toFloat(v); isNum {
			in.EstimatedHours = &h
		} else {
			errs.Add(prefix+".estimated_hours", "A valid number is required.")
		}
	}

	if v, ok := m["importance"]; ok && v != nil {
		if imp, isInt := toInt(v); isInt {
			in.Importance = &imp
			validateImportance(errs, prefix, imp)
		} else {
			errs.Add(prefix+".importance", "A valid integer is required.")
		}
	}

	if v, ok := m["dependencies"]; ok && v != nil {
		in.Dependencies = decodeDependencies(errs, prefix+".dependencies", v)
	}

	return in
}

func decodeDependencies(errs *ValidationErrors, field string, v any) []int {
	list, ok := v.([]any)
	if !ok {
		errs.Add(field, fmt.Sprintf("Expected a list of items but got type %q.", typeName(v)))
		return nil
	}
	deps := make([]int, 0, len(list))
	for i, item := range list {
		id, isInt := toInt(item)
		if !isInt {
			errs.Add(fmt.Sprintf("%s[%d]", field, i), "A valid integer is required.")
			continue
		}
		deps = append(deps, id)
	}
	return deps
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toDate accepts an ISO date string, or a timestamp the YAML decoder has
// already resolved.
func toDate(v any) (date.Date, bool) {
	switch d := v.(type) {
	case string:
		parsed, err := date.Parse(strings.TrimSpace(d))
		if err != nil {
			return date.Date{}, false
		}
		return parsed, true
	case time.Time:
		return date.FromTime(d), true
	default:
		return date.Date{}, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return "number"
	}
}
