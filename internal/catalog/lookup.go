package catalog

import "strings"

var byID = func() map[string]Metric {
	m := make(map[string]Metric, len(metrics))
	for _, metric := range metrics {
		m[metric.ID] = metric
	}
	return m
}()

// Get returns the catalog entry for a canonical metric id.
func Get(id string) (Metric, bool) {
	m, ok := byID[id]
	return m, ok
}

// All returns the full catalog in table order. The returned slice is a copy.
func All() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// Lookup resolves a free-text metric name to its catalog entry. The name is
// trimmed and lower-cased, then matched against the variant table: pass 1
// requires an exact variant match, pass 2 accepts containment in either
// direction. The first variant satisfying either rule wins; names matching
// no variant return false.
func Lookup(name string) (Metric, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Metric{}, false
	}

	for _, v := range variants {
		if v.name == normalized {
			return byID[v.id], true
		}
	}
	for _, v := range variants {
		if strings.Contains(normalized, v.name) || strings.Contains(v.name, normalized) {
			return byID[v.id], true
		}
	}
	return Metric{}, false
}
