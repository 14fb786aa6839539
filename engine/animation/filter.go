package animation

import "github.com/Carmen-Shannon/oxy-anim/common"

// mixWeights derives a child's per-target weights from its parent's.
//
// With the filter unused every target gets parent*blend. Otherwise the targets in the parent's
// filter set are marked, and the action decides per target:
//   - pass: marked targets get parent*blend, the rest 0
//   - stop: unmarked targets get parent*blend, the rest 0
//   - blend: marked targets get parent*blend, the rest keep the parent weight
//
// Parameters:
//   - dst: the child weights, already sized to len(parent)
//   - parent: the parent weights
//   - marked: per-target filter membership, nil when the filter is unused
//   - blend: the scalar weight
//   - action: the filter action
//
// Returns:
//   - anyValid: true when some weight exceeds CmpEpsilon
//   - maxWeight: the largest weight written
func mixWeights(dst, parent []float64, marked []bool, blend float64, action FilterAction) (anyValid bool, maxWeight float64) {
	for i := range dst {
		var w float64
		switch {
		case marked == nil:
			w = parent[i] * blend
		case action == FilterPass:
			if marked[i] {
				w = parent[i] * blend
			}
		case action == FilterStop:
			if !marked[i] {
				w = parent[i] * blend
			}
		case action == FilterBlend:
			if marked[i] {
				w = parent[i] * blend
			} else {
				w = parent[i]
			}
		default:
			w = parent[i] * blend
		}
		dst[i] = w
		if w > common.CmpEpsilon {
			anyValid = true
		}
		maxWeight = max(maxWeight, w)
	}
	return anyValid, maxWeight
}

// markFiltered flags the slots of the tracks in n's filter set.
func markFiltered(n Node, trackMap map[string]int, count int) []bool {
	marked := make([]bool, count)
	for path, slot := range trackMap {
		if slot >= 0 && slot < count && n.IsPathFiltered(path) {
			marked[slot] = true
		}
	}
	return marked
}
