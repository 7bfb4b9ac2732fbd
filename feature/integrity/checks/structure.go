package checks

import (
	"context"
	"fmt"

	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"
)

// StructureReport describes what the backend holds under a template.
type StructureReport struct {
	Glob string `json:"glob"`
	// Listed counts the paths the glob selected.
	Listed int `json:"listed"`
	// Matched counts the listed paths the template could parse.
	Matched int `json:"matched"`
	// Unparsed holds paths the glob selected but the template rejected.
	Unparsed []string `json:"unparsed"`
	Status   string   `json:"status"` // "ok", "empty", "warning"
}

type checker interface {
	Check(ctx context.Context) error
}

// CheckStructure verifies that the backend is reachable and lists what it
// holds for p. Listers exposing Check (such as lister.ObjectLister) are probed
// before listing.
func CheckStructure(ctx context.Context, l lister.Lister, p *pattern.Pattern) (*StructureReport, error) {
	if c, ok := l.(checker); ok {
		if err := c.Check(ctx); err != nil {
			return nil, err
		}
	}

	glob := p.Glob()
	paths, err := l.ListPaths(ctx, glob)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", glob, err)
	}

	report := &StructureReport{
		Glob:     glob,
		Listed:   len(paths),
		Unparsed: []string{},
		Status:   "ok",
	}
	for _, path := range paths {
		if _, ok := p.MatchOne(path); !ok {
			report.Unparsed = append(report.Unparsed, path)
			continue
		}
		report.Matched++
	}

	switch {
	case len(report.Unparsed) > 0:
		report.Status = "warning"
	case report.Matched == 0:
		report.Status = "empty"
	}
	return report, nil
}
