package cohort

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	TemplateTeamSize    = 11
	TemplateSquadSize   = 22
	TopCaptainsSize     = 5
	TopTransfersSize    = 10
	percentagePlaces    = 1
	averagePointsPlaces = 2
)

// Reduce folds the fetched managers of one gameweek into population
// statistics. Only managers present in records count towards ManagerCount
// and the points statistics. Rankings order by count descending, then
// athlete id ascending.
func Reduce(gameWeek int, records []ManagerRecord) GameweekSummary {
	squadOwnership := make(map[int64]int)
	startingOwnership := make(map[int64]int)
	captains := make(map[int64]int)
	transfersIn := make(map[int64]int)
	transfersOut := make(map[int64]int)
	chips := make(map[string]int)

	summary := GameweekSummary{
		GameWeek:     gameWeek,
		ManagerCount: len(records),
		ChipUsage:    chips,
	}

	total := decimal.Zero
	for i, record := range records {
		points := record.Snapshot.EventPoints
		total = total.Add(decimal.NewFromInt(int64(points)))
		if i == 0 || points > *summary.HighestPoints {
			summary.HighestPoints = intPtr(points)
		}
		if i == 0 || points < *summary.LowestPoints {
			summary.LowestPoints = intPtr(points)
		}

		if chip := record.Snapshot.ActiveChip; chip != "" {
			chips[chip]++
		}

		for _, pick := range record.Picks {
			squadOwnership[pick.PlayerID]++
			if pick.IsStarting() {
				startingOwnership[pick.PlayerID]++
			}
			if pick.IsCaptain {
				captains[pick.PlayerID]++
			}
		}

		for _, transfer := range record.Transfers {
			transfersIn[transfer.PlayerInID]++
			transfersOut[transfer.PlayerOutID]++
		}
	}

	if len(records) > 0 {
		avg := total.Div(decimal.NewFromInt(int64(len(records)))).Round(averagePointsPlaces)
		summary.AveragePoints = avg.InexactFloat64()
	}

	n := len(records)
	summary.TemplateTeam = rank(startingOwnership, TemplateTeamSize, n)
	summary.TemplateSquad = rank(squadOwnership, TemplateSquadSize, n)
	summary.MostCaptained = rank(captains, TopCaptainsSize, n)
	summary.MostTransferredIn = rank(transfersIn, TopTransfersSize, n)
	summary.MostTransferredOut = rank(transfersOut, TopTransfersSize, n)
	return summary
}

// Percentage returns count/managerCount*100 rounded to one decimal place,
// halves away from zero.
func Percentage(count, managerCount int) float64 {
	if managerCount <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(managerCount))).
		Round(percentagePlaces).
		InexactFloat64()
}

func rank(counts map[int64]int, limit, managerCount int) []OwnershipEntry {
	out := make([]OwnershipEntry, 0, len(counts))
	for id, count := range counts {
		out = append(out, OwnershipEntry{AthleteID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].AthleteID < out[j].AthleteID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Percentage = Percentage(out[i].Count, managerCount)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
