package matching

import (
	"sort"
	"strings"
)

const (
	DefaultTeamThreshold   = 80
	DefaultPlayerThreshold = 75

	// FullNameBoostFloor is the full-name score from which FullNameBoost applies.
	FullNameBoostFloor = 85
	FullNameBoost      = 5
)

// Candidate is one entity from the provider being matched against.
type Candidate struct {
	ID       int64
	FullName string
	// Aliases are short names (web name, surname) compared against the
	// query's short name with Ratio only.
	Aliases []string
}

type Query struct {
	Name      string
	ShortName string
}

// Result carries the best candidate even when it falls below the threshold so
// callers can surface near misses.
type Result struct {
	Candidate Candidate
	Score     int
	FullScore int
	Matched   bool
	Found     bool
}

// Score computes the combined score of one candidate for q.
func Score(q Query, c Candidate) (combined, full int) {
	full = BestOf(q.Name, c.FullName)
	combined = full

	if short := strings.TrimSpace(q.ShortName); short != "" {
		for _, alias := range c.Aliases {
			if strings.TrimSpace(alias) == "" {
				continue
			}
			combined = max(combined, Ratio(short, alias))
		}
	}

	if full >= FullNameBoostFloor {
		combined = max(combined, full+FullNameBoost)
	}
	return combined, full
}

// Match scores every candidate and returns the highest. Equal scores resolve
// to the lowest candidate id regardless of input order.
func Match(q Query, candidates []Candidate, threshold int) Result {
	ordered := sortedByID(candidates)

	var best Result
	for _, c := range ordered {
		combined, full := Score(q, c)
		if !best.Found || combined > best.Score {
			best = Result{Candidate: c, Score: combined, FullScore: full, Found: true}
		}
	}
	best.Matched = best.Found && best.Score >= threshold
	return best
}

// Ranked is one entry of Rank output.
type Ranked struct {
	Candidate Candidate
	Score     int
}

// ReviewScore is the plain maximum of every name pairing, including the
// query short name against the candidate full name. No boost is applied.
func ReviewScore(q Query, c Candidate) int {
	score := BestOf(q.Name, c.FullName)
	if short := strings.TrimSpace(q.ShortName); short != "" {
		for _, alias := range c.Aliases {
			if strings.TrimSpace(alias) != "" {
				score = max(score, Ratio(short, alias))
			}
		}
		score = max(score, PartialRatio(short, c.FullName))
	}
	return score
}

// Rank returns candidates whose ReviewScore is at least floor, best first,
// capped at limit.
func Rank(q Query, candidates []Candidate, floor, limit int) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range sortedByID(candidates) {
		if score := ReviewScore(q, c); score >= floor {
			out = append(out, Ranked{Candidate: c, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedByID(candidates []Candidate) []Candidate {
	ordered := append([]Candidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
