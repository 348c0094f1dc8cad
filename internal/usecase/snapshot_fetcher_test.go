package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	referencemock "github.com/riskibarqy/fantasy-insights/internal/mocks/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func knownPlayersRepo(t *testing.T, ids ...int64) *referencemock.Repository {
	t.Helper()
	repo := referencemock.NewRepository(t)
	repo.On("ListPlayerIDs", mock.Anything).Return(ids, nil).Once()
	return repo
}

func TestSnapshotFetcher_FetchStandings_PagesAndTruncates(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{
			1: standingsPage(1, 1, 50, true),
			2: standingsPage(2, 51, 50, true),
			3: standingsPage(3, 101, 50, true),
		},
	}
	fetcher := NewSnapshotFetcher(league, referencemock.NewRepository(t), logging.NewNop())

	got, err := fetcher.FetchStandings(context.Background(), "314", 120)
	require.NoError(t, err)
	require.Len(t, got, 120)
	assert.Equal(t, []int{1, 2, 3}, league.pageCalls)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 120, got[119].Rank)
}

func TestSnapshotFetcher_FetchStandings_StopsWithoutNextPage(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{1: standingsPage(1, 1, 30, false)},
	}
	fetcher := NewSnapshotFetcher(league, referencemock.NewRepository(t), logging.NewNop())

	got, err := fetcher.FetchStandings(context.Background(), "314", 100)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.Equal(t, []int{1}, league.pageCalls)
}

func TestSnapshotFetcher_FetchStandings_SortsByRank(t *testing.T) {
	t.Parallel()

	page := standingsPage(1, 1, 3, false)
	page.Entries[0], page.Entries[2] = page.Entries[2], page.Entries[0]
	league := &fakeLeagueProvider{pages: map[int]ExternalStandingsPage{1: page}}
	fetcher := NewSnapshotFetcher(league, referencemock.NewRepository(t), logging.NewNop())

	got, err := fetcher.FetchStandings(context.Background(), "314", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
}

func TestSnapshotFetcher_FetchStandings_FailsWhenNothingReadable(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{pageErrs: map[int]error{1: errFakeUpstream}}
	fetcher := NewSnapshotFetcher(league, referencemock.NewRepository(t), logging.NewNop())

	_, err := fetcher.FetchStandings(context.Background(), "314", 50)
	assert.ErrorIs(t, err, errFakeUpstream)

	_, err = fetcher.FetchStandings(context.Background(), "314", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSnapshotFetcher_FetchStandings_SkipsFailedLaterPage(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages:    map[int]ExternalStandingsPage{1: standingsPage(1, 1, 50, true)},
		pageErrs: map[int]error{2: errFakeUpstream},
	}
	fetcher := NewSnapshotFetcher(league, referencemock.NewRepository(t), logging.NewNop())

	got, err := fetcher.FetchStandings(context.Background(), "314", 100)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestSnapshotFetcher_Fetch_IsolatesManagerFailuresAndSkipsUnknownPlayers(t *testing.T) {
	t.Parallel()

	transferTime := time.Date(2024, 10, 4, 17, 2, 11, 0, time.UTC)
	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{1: standingsPage(1, 1, 3, false)},
		picks: map[int64]ExternalPicks{
			1001: {ActiveChip: "bboost", EventPoints: 70, Bank: 5, TeamValue: 1010, Picks: squadOf(10, 11, 999)},
			1003: {EventPoints: 50, Picks: squadOf(10, 12)},
		},
		picksErrs: map[int64]error{1002: errFakeUpstream},
		transfers: map[int64][]ExternalTransfer{
			1001: {
				{GameWeek: 7, PlayerInID: 11, PlayerOutID: 12, PlayerInCost: 55, PlayerOutCost: 50, Time: &transferTime},
				{GameWeek: 7, PlayerInID: 11, PlayerOutID: 12, PlayerInCost: 55, PlayerOutCost: 50, Time: &transferTime},
				{GameWeek: 6, PlayerInID: 12, PlayerOutID: 11},
				{GameWeek: 7, PlayerInID: 999, PlayerOutID: 10},
			},
		},
	}
	fetcher := NewSnapshotFetcher(league, knownPlayersRepo(t, 10, 11, 12), logging.NewNop())

	got, err := fetcher.Fetch(context.Background(), FetchInput{GameWeek: 7, LeagueID: "314", CohortSize: 3, Workers: 1})
	require.NoError(t, err)
	require.Len(t, got.Managers, 3)
	assert.Equal(t, 1, got.FailedCount())

	first := got.Managers[0]
	require.NoError(t, first.Err)
	assert.Equal(t, 1, first.SkippedPicks)
	assert.Equal(t, 1, first.SkippedTransfers)
	assert.Len(t, first.Record.Picks, 2)
	require.Len(t, first.Record.Transfers, 1)
	assert.Equal(t, int64(11), first.Record.Transfers[0].PlayerInID)
	assert.Equal(t, "bboost", first.Record.Snapshot.ActiveChip)
	assert.Equal(t, 70, first.Record.Snapshot.EventPoints)
	assert.Equal(t, 1010, first.Record.Snapshot.TeamValue)

	assert.ErrorIs(t, got.Managers[1].Err, errFakeUpstream)

	records := got.Records()
	require.Len(t, records, 2)
	assert.Equal(t, int64(1001), records[0].Snapshot.EntryID)
	assert.Equal(t, int64(1003), records[1].Snapshot.EntryID)
}

func TestSnapshotFetcher_Fetch_TransferFailureExcludesManager(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages:        map[int]ExternalStandingsPage{1: standingsPage(1, 1, 1, false)},
		picks:        map[int64]ExternalPicks{1001: {Picks: squadOf(10)}},
		transferErrs: map[int64]error{1001: errFakeUpstream},
	}
	fetcher := NewSnapshotFetcher(league, knownPlayersRepo(t, 10), logging.NewNop())

	got, err := fetcher.Fetch(context.Background(), FetchInput{GameWeek: 1, LeagueID: "314", CohortSize: 1, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, got.FailedCount())
	assert.Empty(t, got.Records())
}

func TestSnapshotFetcher_Fetch_WorkerPoolKeepsRankOrder(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{1: standingsPage(1, 1, 40, false)},
		picks: map[int64]ExternalPicks{},
	}
	for rank := 1; rank <= 40; rank++ {
		league.picks[int64(1000+rank)] = ExternalPicks{EventPoints: rank, Picks: squadOf(10)}
	}
	fetcher := NewSnapshotFetcher(league, knownPlayersRepo(t, 10), logging.NewNop())

	got, err := fetcher.Fetch(context.Background(), FetchInput{GameWeek: 3, LeagueID: "314", CohortSize: 40, Workers: 8})
	require.NoError(t, err)
	records := got.Records()
	require.Len(t, records, 40)
	for i, record := range records {
		assert.Equal(t, i+1, record.Snapshot.Rank)
		assert.Equal(t, i+1, record.Snapshot.EventPoints)
	}
}

func TestSnapshotFetcher_Fetch_RequiresLocalPlayers(t *testing.T) {
	t.Parallel()

	repo := referencemock.NewRepository(t)
	repo.On("ListPlayerIDs", mock.Anything).Return([]int64{}, nil).Once()
	fetcher := NewSnapshotFetcher(&fakeLeagueProvider{}, repo, logging.NewNop())

	_, err := fetcher.Fetch(context.Background(), FetchInput{GameWeek: 1, LeagueID: "314", CohortSize: 1, Workers: 1})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestSnapshotFetcher_Fetch_CachesKnownPlayers(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{1: standingsPage(1, 1, 1, false)},
		picks: map[int64]ExternalPicks{1001: {Picks: squadOf(10)}},
	}
	repo := knownPlayersRepo(t, 10)
	fetcher := NewSnapshotFetcher(league, repo, logging.NewNop())

	input := FetchInput{GameWeek: 1, LeagueID: "314", CohortSize: 1, Workers: 1}
	_, err := fetcher.Fetch(context.Background(), input)
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), input)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListPlayerIDs", 1)
}

func TestSnapshotFetcher_InvalidateKnownPlayersReloadsTable(t *testing.T) {
	t.Parallel()

	league := &fakeLeagueProvider{
		pages: map[int]ExternalStandingsPage{1: standingsPage(1, 1, 1, false)},
		picks: map[int64]ExternalPicks{1001: {Picks: squadOf(10)}},
	}
	repo := referencemock.NewRepository(t)
	repo.On("ListPlayerIDs", mock.Anything).Return([]int64{10}, nil).Twice()
	fetcher := NewSnapshotFetcher(league, repo, logging.NewNop())

	input := FetchInput{GameWeek: 1, LeagueID: "314", CohortSize: 1, Workers: 1}
	_, err := fetcher.Fetch(context.Background(), input)
	require.NoError(t, err)
	fetcher.InvalidateKnownPlayers()
	_, err = fetcher.Fetch(context.Background(), input)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListPlayerIDs", 2)
}
