package analysis

// DedupGoals removes the duplicate no-assist artifacts the feed emits for
// assisted goals. The feed reports every assisted goal twice, once with and
// once without the assist, while a genuine solo goal appears exactly once;
// per scorer the genuine solo count is therefore
// max(0, noAssist - withAssist). Assisted events are kept unchanged, and
// only the first genuine-solo-count no-assist events survive in feed order.
// The heuristic is count-based per scorer per game; it does not pair a
// specific duplicate with a specific assisted goal.
func DedupGoals(events []RawGoal) []RawGoal {
	withAssist := make(map[string]int)
	noAssist := make(map[string]int)
	for _, e := range events {
		if e.Assist == "" {
			noAssist[e.Scorer]++
			continue
		}
		withAssist[e.Scorer]++
	}

	soloQuota := make(map[string]int, len(noAssist))
	for scorer, count := range noAssist {
		quota := count - withAssist[scorer]
		if quota < 0 {
			quota = 0
		}
		soloQuota[scorer] = quota
	}

	out := make([]RawGoal, 0, len(events))
	for _, e := range events {
		if e.Assist != "" {
			out = append(out, e)
			continue
		}
		if soloQuota[e.Scorer] > 0 {
			soloQuota[e.Scorer]--
			out = append(out, e)
		}
	}

	return out
}
