package task

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclBatch is the top level of an HCL batch document:
//
//	strategy = "deadline_driven"
//
//	task "Write release notes" {
//	  id           = 3
//	  due_date     = "2025-06-01"
//	  dependencies = [1, 2]
//	}
type hclBatch struct {
	Strategy *string   `hcl:"strategy,optional"`
	Tasks    []hclTask `hcl:"task,block"`
}

type hclTask struct {
	Title string   `hcl:"title,label"`
	Body  hcl.Body `hcl:",remain"`
}

// unmarshalHCL turns an HCL document into the same generic shape the JSON
// and YAML decoders produce, so all formats share one coercion path.
func unmarshalHCL(data []byte) (any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, "batch.hcl")
	if diags.HasErrors() {
		return nil, diags
	}

	var doc hclBatch
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, diags
	}

	tasks := make([]any, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		attrs, diags := t.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		m := make(map[string]any, len(attrs)+1)
		for name, attr := range attrs {
			v, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			native, err := ctyToNative(v)
			if err != nil {
				return nil, fmt.Errorf("task %q attribute %s: %w", t.Title, name, err)
			}
			m[name] = native
		}
		m["title"] = t.Title
		tasks = append(tasks, m)
	}

	raw := map[string]any{"tasks": tasks}
	if doc.Strategy != nil {
		raw["strategy"] = *doc.Strategy
	}
	return raw, nil
}

// ctyToNative converts a cty value into plain Go values: strings, float64
// numbers, bools, []any and map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("converting number: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, native)
		}
		return list, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
