package scrape

import (
	"sort"
	"strings"
)

// labelPriority fixes the order in which manifest outputs are preferred.
// Labels not listed follow in lexical order.
var labelPriority = []string{"csv", "json"}

// SelectLink returns the label and path of the first non-empty manifest
// entry, or empty strings when there is none.
func SelectLink(files map[string]string) (label, path string) {
	for _, l := range orderedLabels(files) {
		if p := strings.TrimSpace(files[l]); p != "" {
			return l, p
		}
	}
	return "", ""
}

func orderedLabels(files map[string]string) []string {
	known := make(map[string]bool, len(labelPriority))
	out := make([]string, 0, len(files))
	for _, l := range labelPriority {
		known[l] = true
		if _, ok := files[l]; ok {
			out = append(out, l)
		}
	}

	var rest []string
	for l := range files {
		if !known[l] {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// ResolveLink joins a manifest path onto the files base URL. Absolute URLs
// are returned unchanged.
func ResolveLink(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if baseURL == "" {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
