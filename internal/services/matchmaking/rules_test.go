package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/matchqueue/internal/model"
)

func TestMMRDifference(t *testing.T) {
	assert.Equal(t, 5, MMRDifference(1000, 1005))
	assert.Equal(t, 5, MMRDifference(1005, 1000))
	assert.Equal(t, 0, MMRDifference(7, 7))
}

func TestSkillWindowAccepts(t *testing.T) {
	tests := []struct {
		kind model.QueueKind
		diff int
		want bool
	}{
		{model.QueueQuick, 0, true},
		{model.QueueQuick, 5, true},
		{model.QueueQuick, 10, true},
		{model.QueueQuick, 11, false},
		{model.QueueRanked, 0, false},
		{model.QueueRanked, 8, false},
		{model.QueueRanked, 10, false},
		{model.QueueRanked, 11, true},
		{model.QueueRanked, 20, true},
		{model.QueueRanked, 25, true},
		{model.QueueRanked, 26, false},
		{model.QueueKind("casual"), 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SkillWindowAccepts(tt.kind, tt.diff), "%s d=%d", tt.kind, tt.diff)
	}
}

func TestEvaluateChecksRegionFirst(t *testing.T) {
	na := model.AccountView{Username: "a", Region: "NA", MMR: 1000}
	eu := model.AccountView{Username: "b", Region: "EU", MMR: 2000}

	reason, ok := Evaluate(model.QueueQuick, na, eu)
	assert.False(t, ok)
	assert.Equal(t, model.RejectRegionMismatch, reason)
}

func TestEvaluateRegionIsCaseSensitive(t *testing.T) {
	upper := model.AccountView{Username: "a", Region: "NA", MMR: 1000}
	lower := model.AccountView{Username: "b", Region: "na", MMR: 1000}

	reason, ok := Evaluate(model.QueueQuick, upper, lower)
	assert.False(t, ok)
	assert.Equal(t, model.RejectRegionMismatch, reason)
}

func TestEvaluateAccepts(t *testing.T) {
	p1 := model.AccountView{Username: "a", Region: "NA", MMR: 1000}
	p2 := model.AccountView{Username: "b", Region: "NA", MMR: 1020}

	_, ok := Evaluate(model.QueueRanked, p1, p2)
	assert.True(t, ok)

	reason, ok := Evaluate(model.QueueQuick, p1, p2)
	assert.False(t, ok)
	assert.Equal(t, model.RejectSkillWindow, reason)
}
