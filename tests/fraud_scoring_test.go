package tests

import (
	"testing"

	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/worker"

	"github.com/stretchr/testify/assert"
)

func TestScoreOrderPatterns_AllCapsFields(t *testing.T) {
	ps := worker.ScoreOrderPatterns(strp("JOHN SMITH"), strp("123 MAIN ST"), strp("SPRINGFIELD"), strp("jsmith@example.com"))
	// name +35, address +25, city +15
	assert.Equal(t, 75, ps.Score)
	assert.Len(t, ps.Flags, 3)
}

func TestScoreOrderPatterns_CleanOrder(t *testing.T) {
	ps := worker.ScoreOrderPatterns(strp("Jane Doe"), strp("42 Elm Street"), strp("Portland"), strp("jane@example.com"))
	assert.Equal(t, 0, ps.Score)
	assert.Empty(t, ps.Flags)
}

func TestScoreOrderPatterns_CapsEmailLocalPart(t *testing.T) {
	ps := worker.ScoreOrderPatterns(nil, nil, nil, strp("JDOE123@example.com"))
	assert.Equal(t, 20, ps.Score)
}

func TestScoreOrderPatterns_ThreePartName(t *testing.T) {
	ps := worker.ScoreOrderPatterns(strp("Juan Carlos De La Cruz"), nil, nil, nil)
	assert.Equal(t, 10, ps.Score)
}

func TestScoreOrderPatterns_ShortCapsNotFlagged(t *testing.T) {
	// Two-character tokens like state codes are not an all-caps signal.
	ps := worker.ScoreOrderPatterns(nil, nil, strp("LA"), nil)
	assert.Equal(t, 0, ps.Score)
}

func TestShouldAlert_Gates(t *testing.T) {
	alert, reason := worker.ShouldAlert(55, 0)
	assert.True(t, alert)
	assert.Equal(t, "IPQS High Risk", reason)

	alert, reason = worker.ShouldAlert(25, 60)
	assert.True(t, alert)
	assert.Equal(t, "Combined Risk", reason)

	alert, _ = worker.ShouldAlert(25, 40)
	assert.False(t, alert)

	alert, _ = worker.ShouldAlert(10, 90)
	assert.False(t, alert)
}

func TestRiskLevel_Thresholds(t *testing.T) {
	assert.Equal(t, "high", infra.RiskLevel(90))
	assert.Equal(t, "risky", infra.RiskLevel(85))
	assert.Equal(t, "suspicious", infra.RiskLevel(75))
	assert.Equal(t, "low", infra.RiskLevel(74))
	assert.Equal(t, "low", infra.RiskLevel(0))
}
