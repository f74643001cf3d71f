package calculator

import "github.com/mmynk/tandas/internal/models"

// selectAwardee picks the next undelivered member under the given policy.
// Ties always resolve to the lowest position. Returns -1 when everyone has
// been delivered.
func selectAwardee(members []simMember, policy models.PriorityPolicy, expectedToDate float64) int {
	best := -1
	var bestScore float64
	for i := range members {
		m := &members[i]
		if m.delivered {
			continue
		}

		var score float64
		switch policy {
		case models.PolicyCompliance:
			score = m.contributed
		case models.PolicyRescue:
			score = expectedToDate - m.contributed
		default:
			// fifo: members are ordered by position, first undelivered wins
			return i
		}

		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
