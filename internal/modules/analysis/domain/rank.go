package domain

import (
	"cmp"
	"slices"
)

// RankLabels drops labels under minConfidence, orders the rest by confidence
// (highest first, ties by name) and keeps at most maxLabels. A maxLabels of
// zero or less keeps all of them.
func RankLabels(labels []Label, maxLabels int32, minConfidence float32) []Label {
	out := make([]Label, 0, len(labels))
	for _, l := range labels {
		if l.Name == "" || l.Confidence < float64(minConfidence) {
			continue
		}
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b Label) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if maxLabels > 0 && len(out) > int(maxLabels) {
		out = out[:maxLabels]
	}
	return out
}
