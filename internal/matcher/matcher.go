package matcher

import (
	"strings"

	"github.com/replydesk/responder/internal/domain"
)

// Match scores the job's subject and message against the configured rules and
// returns the best-matching enabled rule, or nil when nothing matches.
//
// score = keyword hits + priority*0.01. The priority term only breaks ties:
// a rule with zero keyword hits is never eligible, whatever its priority.
// Exact ties resolve to the rule evaluated first, so matching is
// deterministic for a fixed settings snapshot.
func Match(settings domain.Settings, job *domain.Job) (*domain.Rule, float64) {
	haystack := strings.ToLower(job.Subject() + "\n" + job.Message())

	var matched *domain.Rule
	bestScore := -1.0

	for i := range settings.Rules {
		rule := &settings.Rules[i]
		if !rule.IsEnabled() {
			continue
		}

		score := 0.0
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(haystack, kw) {
				score++
			}
		}
		if score <= 0 {
			continue
		}
		score += float64(rule.Priority) * 0.01

		if score > bestScore {
			matched = rule
			bestScore = score
		}
	}

	if matched == nil {
		return nil, 0
	}
	return matched, bestScore
}
