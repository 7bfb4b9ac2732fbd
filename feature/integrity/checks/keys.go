package checks

import (
	"sort"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/pattern"
)

// Collision lists every path whose values normalize to the same key.
// The catalog keeps only the first one.
type Collision struct {
	Key   string   `json:"key"`
	Paths []string `json:"paths"`
}

// KeyReport lists the paths a catalog cannot address.
type KeyReport struct {
	Entries    int         `json:"entries"`
	Invalid    []string    `json:"invalid"`
	Collisions []Collision `json:"collisions"`
	Status     string      `json:"status"` // "ok", "error"
}

// CheckKeys builds the entry key of every parseable path and reports paths
// whose key is invalid or shared with another path.
func CheckKeys(paths []string, p *pattern.Pattern, keys entrykey.Builder) KeyReport {
	report := KeyReport{
		Invalid:    []string{},
		Collisions: []Collision{},
		Status:     "ok",
	}

	byKey := make(map[string][]string)
	var order []string
	for _, path := range paths {
		values, ok := p.MatchOne(path)
		if !ok {
			continue
		}
		key, err := keys.Build(values)
		if err != nil {
			report.Invalid = append(report.Invalid, path)
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], path)
	}

	report.Entries = len(order)
	for _, key := range order {
		if len(byKey[key]) > 1 {
			report.Collisions = append(report.Collisions, Collision{Key: key, Paths: byKey[key]})
		}
	}
	sort.Slice(report.Collisions, func(i, j int) bool {
		return report.Collisions[i].Key < report.Collisions[j].Key
	})

	if len(report.Invalid) > 0 || len(report.Collisions) > 0 {
		report.Status = "error"
	}
	return report
}
