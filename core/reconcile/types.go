package reconcile

// Item is one entry as seen by a single source.
type Item struct {
	// Key is the canonical entry key.
	Key string `json:"key"`
	// Path is the entry path relative to the catalog root.
	Path string `json:"path"`
	// Values is the JSON encoding of the entry's field values.
	Values string `json:"values"`
}

// Result is the reconciliation output for a single entry key.
type Result struct {
	// Key is the canonical entry key.
	Key string `json:"key"`

	// LivePresent indicates whether the key is in the current listing.
	LivePresent bool `json:"live_present"`

	// SnapshotPresent indicates whether the key is in the persisted snapshot.
	SnapshotPresent bool `json:"snapshot_present"`

	// Mismatch describes field differences when both sides hold the key,
	// e.g. "path: live=a/1.csv snapshot=a/01.csv".
	Mismatch []string `json:"mismatch"`
}

// Drifted reports whether the two sources disagree about this key.
func (r Result) Drifted() bool {
	return !r.LivePresent || !r.SnapshotPresent || len(r.Mismatch) > 0
}

// Summary provides aggregate counts.
type Summary struct {
	// Total is the number of distinct keys across both sources.
	Total int `json:"total"`
	// Added counts keys only in the live listing.
	Added int `json:"added"`
	// Removed counts keys only in the snapshot.
	Removed int `json:"removed"`
	// Changed counts keys present in both with differing fields.
	Changed int `json:"changed"`
}

// Clean reports whether the sources agree completely.
func (s Summary) Clean() bool {
	return s.Added == 0 && s.Removed == 0 && s.Changed == 0
}

// Report contains per-key results sorted by key, and their summary.
type Report struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// Drift returns only the results where the sources disagree.
func (r Report) Drift() []Result {
	out := make([]Result, 0, r.Summary.Added+r.Summary.Removed+r.Summary.Changed)
	for _, res := range r.Results {
		if res.Drifted() {
			out = append(out, res)
		}
	}
	return out
}
