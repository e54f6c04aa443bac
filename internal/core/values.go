package core

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// isWebURL reports whether s is an absolute http(s) URL with a host.
func isWebURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isAppURI reports whether s is an absolute URI with a non-web scheme, either
// hierarchical (music://host/path) or opaque (spotify:track:id).
func isAppURI(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Scheme == "http" || u.Scheme == "https" {
		return false
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}

// lookup walks nested maps along path.
func lookup(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, key := range path {
		mm, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = mm[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	}
	return nil
}

// stringAt returns the first non-blank string found under any of the paths.
func stringAt(m map[string]any, paths ...[]string) string {
	for _, p := range paths {
		v, ok := lookup(m, p...)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		}
	}
	return ""
}

// number converts the numeric shapes a decoder or adapter may produce.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func numberAt(m map[string]any, path ...string) (float64, bool) {
	v, ok := lookup(m, path...)
	if !ok {
		return 0, false
	}
	return number(v)
}
