// Package hiccup renders nested-array markup to HTML. A form is a slice
// whose first element names a tag, whose optional second element is an
// attribute map, and whose remaining elements are children: either strings
// (text nodes) or nested forms.
package hiccup

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Render serializes a form to an HTML fragment. Attribute keys are emitted
// in sorted order and all text is escaped.
func Render(form []any) (string, error) {
	var b strings.Builder
	if err := render(&b, form); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, form []any) error {
	if len(form) == 0 {
		return fmt.Errorf("hiccup: empty form")
	}
	tag, ok := form[0].(string)
	if !ok {
		return fmt.Errorf("hiccup: form tag is not a string: %v", form[0])
	}

	children := form[1:]
	var attrs map[string]any
	if len(children) > 0 {
		if m, ok := children[0].(map[string]any); ok {
			attrs = m
			children = children[1:]
		}
	}

	b.WriteString("<")
	b.WriteString(tag)
	for _, key := range sortedAttrKeys(attrs) {
		value, ok := attrs[key].(string)
		if !ok {
			return fmt.Errorf("hiccup: attribute %q is not a string", key)
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(value))
		b.WriteString(`"`)
	}
	b.WriteString(">")

	for _, child := range children {
		switch c := child.(type) {
		case string:
			b.WriteString(html.EscapeString(c))
		case []any:
			if err := render(b, c); err != nil {
				return err
			}
		default:
			return fmt.Errorf("hiccup: unexpected child %T", child)
		}
	}

	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return nil
}

// InsertHref returns a copy of form in which every anchor that carries a
// resource attribute gains an href built from template, with "{curie}"
// replaced by the resource. Nested forms are processed recursively.
func InsertHref(form []any, template string) []any {
	out := make([]any, len(form))
	copy(out, form)

	if len(out) >= 2 {
		if tag, ok := out[0].(string); ok && tag == "a" {
			if attrs, ok := out[1].(map[string]any); ok {
				if resource, ok := attrs["resource"].(string); ok {
					withHref := make(map[string]any, len(attrs)+1)
					for k, v := range attrs {
						withHref[k] = v
					}
					withHref["href"] = strings.ReplaceAll(template, "{curie}", resource)
					out[1] = withHref
				}
			}
		}
	}

	for i, child := range out {
		if nested, ok := child.([]any); ok {
			out[i] = InsertHref(nested, template)
		}
	}
	return out
}

func sortedAttrKeys(attrs map[string]any) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
