package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
)

var errFakeUpstream = errors.New("upstream timeout")

type fakeLeagueProvider struct {
	mu sync.Mutex

	bootstrap    ExternalBootstrap
	bootstrapErr error
	pages        map[int]ExternalStandingsPage
	pageErrs     map[int]error
	picks        map[int64]ExternalPicks
	picksErrs    map[int64]error
	transfers    map[int64][]ExternalTransfer
	transferErrs map[int64]error

	pageCalls []int
}

func (f *fakeLeagueProvider) FetchBootstrap(context.Context) (ExternalBootstrap, error) {
	return f.bootstrap, f.bootstrapErr
}

func (f *fakeLeagueProvider) FetchStandingsPage(_ context.Context, _ string, page int) (ExternalStandingsPage, error) {
	f.mu.Lock()
	f.pageCalls = append(f.pageCalls, page)
	f.mu.Unlock()

	if err := f.pageErrs[page]; err != nil {
		return ExternalStandingsPage{}, err
	}
	out, ok := f.pages[page]
	if !ok {
		return ExternalStandingsPage{Page: page}, nil
	}
	return out, nil
}

func (f *fakeLeagueProvider) FetchManagerPicks(_ context.Context, entryID int64, _ int) (ExternalPicks, error) {
	if err := f.picksErrs[entryID]; err != nil {
		return ExternalPicks{}, err
	}
	return f.picks[entryID], nil
}

func (f *fakeLeagueProvider) FetchManagerTransfers(_ context.Context, entryID int64) ([]ExternalTransfer, error) {
	if err := f.transferErrs[entryID]; err != nil {
		return nil, err
	}
	return f.transfers[entryID], nil
}

type fakeAnalyticsProvider struct {
	teams     []ExternalAnalyticsTeam
	teamsErr  error
	squads    map[int64][]ExternalAnalyticsPlayer
	squadErrs map[int64]error

	mu         sync.Mutex
	squadCalls map[int64]int
}

func (f *fakeAnalyticsProvider) FetchSeasonTeams(context.Context) ([]ExternalAnalyticsTeam, error) {
	return f.teams, f.teamsErr
}

func (f *fakeAnalyticsProvider) FetchTeamSquad(_ context.Context, teamID int64) ([]ExternalAnalyticsPlayer, error) {
	f.mu.Lock()
	if f.squadCalls == nil {
		f.squadCalls = make(map[int64]int)
	}
	f.squadCalls[teamID]++
	f.mu.Unlock()

	if err := f.squadErrs[teamID]; err != nil {
		return nil, err
	}
	return f.squads[teamID], nil
}

type fakeManagerFetcher struct {
	results       map[int]FetchResult
	errs          map[int]error
	inputs        []FetchInput
	invalidations int
}

func (f *fakeManagerFetcher) InvalidateKnownPlayers() {
	f.invalidations++
}

func (f *fakeManagerFetcher) Fetch(_ context.Context, input FetchInput) (FetchResult, error) {
	f.inputs = append(f.inputs, input)
	if err := f.errs[input.GameWeek]; err != nil {
		return FetchResult{}, err
	}
	if out, ok := f.results[input.GameWeek]; ok {
		return out, nil
	}
	return FetchResult{}, fmt.Errorf("no fake result for game week %d", input.GameWeek)
}

// standingsPage builds entries with consecutive ranks and entry ids equal to
// 1000+rank.
func standingsPage(page, firstRank, count int, hasNext bool) ExternalStandingsPage {
	out := ExternalStandingsPage{Page: page, HasNext: hasNext}
	for i := 0; i < count; i++ {
		rank := firstRank + i
		out.Entries = append(out.Entries, ExternalStandingEntry{
			EntryID:     int64(1000 + rank),
			Rank:        rank,
			TotalPoints: 2000 - rank,
			EventPoints: 60,
		})
	}
	return out
}

func squadOf(ids ...int64) []ExternalPick {
	out := make([]ExternalPick, 0, len(ids))
	for i, id := range ids {
		out = append(out, ExternalPick{PlayerID: id, Position: i + 1, Multiplier: 1})
	}
	return out
}

func managerRecord(entryID int64, gameWeek, points int, chip string, playerIDs ...int64) cohort.ManagerRecord {
	record := cohort.ManagerRecord{
		Snapshot: cohort.ManagerSnapshot{EntryID: entryID, GameWeek: gameWeek, EventPoints: points, ActiveChip: chip},
	}
	for i, id := range playerIDs {
		record.Picks = append(record.Picks, cohort.SquadPick{EntryID: entryID, GameWeek: gameWeek, PlayerID: id, Position: i + 1, Multiplier: 1})
	}
	return record
}
