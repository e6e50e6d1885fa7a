package learning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse reads model output into paths. It accepts an object with a
// learning_paths key or a bare array, optionally wrapped in a code fence.
func Parse(raw string) ([]Path, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", ErrBadResponse)
	}

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	var items []any
	switch val := data.(type) {
	case []any:
		items = val
	case map[string]any:
		list, ok := val["learning_paths"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: missing learning_paths", ErrBadResponse)
		}
		items = list
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrBadResponse, data)
	}

	paths := make([]Path, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		gap := coerceString(obj["skill_gap"])
		if gap == "" {
			continue
		}
		paths = append(paths, Path{SkillGap: gap, Recommendations: coerceStrings(obj["recommendations"])})
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no skill gaps", ErrBadResponse)
	}
	return paths, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(val, "\n") {
			if s := strings.TrimSpace(strings.TrimLeft(part, "-* ")); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := coerceString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		for _, key := range []string{"title", "name", "resource"} {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		bytes, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(bytes)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
