package matchmaking

import "github.com/mcoot/matchqueue/internal/model"

const (
	// QuickMaxMMRDifference is the widest accepted gap for quick matches
	QuickMaxMMRDifference = 10
	// RankedMinMMRDifference is an exclusive lower bound for ranked matches
	RankedMinMMRDifference = 10
	// RankedMaxMMRDifference is the widest accepted gap for ranked matches
	RankedMaxMMRDifference = 25
)

// MMRDifference returns |a - b|
func MMRDifference(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// SkillWindowAccepts reports whether an MMR gap is acceptable for kind.
// Ranked rejects near-equal ratings as well as wide gaps.
func SkillWindowAccepts(kind model.QueueKind, diff int) bool {
	switch kind {
	case model.QueueQuick:
		return diff <= QuickMaxMMRDifference
	case model.QueueRanked:
		return diff > RankedMinMMRDifference && diff <= RankedMaxMMRDifference
	default:
		return false
	}
}

// Evaluate applies the region and skill-window gates to two live players,
// in that order. It returns the reason for the first gate that fails.
func Evaluate(kind model.QueueKind, p1, p2 model.AccountView) (model.RejectReason, bool) {
	if p1.Region != p2.Region {
		return model.RejectRegionMismatch, false
	}
	if !SkillWindowAccepts(kind, MMRDifference(p1.MMR, p2.MMR)) {
		return model.RejectSkillWindow, false
	}
	return "", true
}
