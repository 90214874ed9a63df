package httpmetrics

import "strings"

const (
	maxPathSegments  = 4
	maxSegmentLength = 32
	paramPlaceholder = "{param}"
	truncatedSuffix  = "..."
)

// NormalizePath keeps metric labels bounded: any segment that is not a plain
// lowercase word (ids, numbers, tokens) becomes {param} and deep paths are
// cut after a few segments.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) > maxPathSegments {
		parts = append(parts[:maxPathSegments], truncatedSuffix)
	}
	for i, part := range parts {
		if part != truncatedSuffix && !isRouteWord(part) {
			parts[i] = paramPlaceholder
		}
	}
	return "/" + strings.Join(parts, "/")
}

func isRouteWord(s string) bool {
	if len(s) == 0 || len(s) > maxSegmentLength {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
