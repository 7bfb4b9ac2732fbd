package reconcile

import (
	"fmt"
	"sort"
)

// Index maps items by key. When keys repeat the first item wins.
func Index(items []Item) map[string]Item {
	index := make(map[string]Item, len(items))
	for _, it := range items {
		if _, exists := index[it.Key]; !exists {
			index[it.Key] = it
		}
	}
	return index
}

// Reconcile compares the live listing against the snapshot over the union of
// their keys.
func Reconcile(live, snapshot map[string]Item) Report {
	union := buildUnion(live, snapshot)

	results := make([]Result, 0, len(union))
	var summary Summary
	for key := range union {
		res := buildResult(key, live, snapshot)
		switch {
		case !res.SnapshotPresent:
			summary.Added++
		case !res.LivePresent:
			summary.Removed++
		case len(res.Mismatch) > 0:
			summary.Changed++
		}
		results = append(results, res)
	}
	summary.Total = len(results)

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})

	return Report{Results: results, Summary: summary}
}

func buildUnion(live, snapshot map[string]Item) map[string]struct{} {
	union := make(map[string]struct{}, len(live))
	for key := range live {
		union[key] = struct{}{}
	}
	for key := range snapshot {
		union[key] = struct{}{}
	}
	return union
}

func buildResult(key string, live, snapshot map[string]Item) Result {
	l, livePresent := live[key]
	s, snapshotPresent := snapshot[key]

	res := Result{
		Key:             key,
		LivePresent:     livePresent,
		SnapshotPresent: snapshotPresent,
		Mismatch:        []string{},
	}
	if livePresent && snapshotPresent {
		res.Mismatch = compareFields(l, s)
	}
	return res
}

func compareFields(live, snapshot Item) []string {
	mismatch := []string{}
	if live.Path != snapshot.Path {
		mismatch = append(mismatch, fmt.Sprintf("path: live=%s snapshot=%s", live.Path, snapshot.Path))
	}
	if live.Values != snapshot.Values {
		mismatch = append(mismatch, fmt.Sprintf("values: live=%s snapshot=%s", live.Values, snapshot.Values))
	}
	return mismatch
}
