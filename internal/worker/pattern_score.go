package worker

// pattern_score.go
// Heuristic scoring of order fields that correlate with card-testing
// bots: shouting-caps names and addresses, three-part names typed into
// autofill forms. Scores are additive and independent of IPQS.

import (
	"regexp"
	"strings"
)

type PatternScore struct {
	Score int
	Flags []string
}

var hasUpperRe = regexp.MustCompile(`[A-Z]`)

// isAllCaps matches strings of 3+ chars that contain at least one
// letter and no lowercase. Short codes like "NY" never count.
func isAllCaps(s string) bool {
	return len(s) > 2 && s == strings.ToUpper(s) && hasUpperRe.MatchString(s)
}

func hasMiddleName(name string) bool {
	return len(strings.Fields(strings.TrimSpace(name))) >= 3
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ScoreOrderPatterns applies the additive heuristics to one order's
// customer fields.
func ScoreOrderPatterns(name, address, city, email *string) PatternScore {
	var ps PatternScore

	if isAllCaps(deref(name)) {
		ps.Score += 35
		ps.Flags = append(ps.Flags, "CAPS Name (+35)")
	}
	if isAllCaps(deref(address)) {
		ps.Score += 25
		ps.Flags = append(ps.Flags, "CAPS Address (+25)")
	}
	if isAllCaps(deref(city)) {
		ps.Score += 15
		ps.Flags = append(ps.Flags, "CAPS City (+15)")
	}
	if e := deref(email); e != "" {
		local, _, _ := strings.Cut(e, "@")
		if isAllCaps(local) {
			ps.Score += 20
			ps.Flags = append(ps.Flags, "CAPS Email (+20)")
		}
	}
	if hasMiddleName(deref(name)) {
		ps.Score += 10
		ps.Flags = append(ps.Flags, "Middle Name (+10)")
	}

	return ps
}

// ShouldAlert is the alert gate: a high IPQS score alone is enough,
// and a moderate IPQS score combined with strong pattern hits also
// fires. Pattern hits alone never alert.
func ShouldAlert(ipqsScore, patternScore int) (bool, string) {
	switch {
	case ipqsScore >= 50:
		return true, "IPQS High Risk"
	case ipqsScore >= 20 && patternScore >= 50:
		return true, "Combined Risk"
	default:
		return false, ""
	}
}
