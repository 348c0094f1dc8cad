package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/platform/cache"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
)

const (
	knownPlayersCacheKey = "league_player_ids"
	knownPlayersCacheTTL = 5 * time.Minute
	progressLogInterval  = 10
)

type FetchInput struct {
	GameWeek   int
	LeagueID   string
	CohortSize int
	Workers    int
}

// ManagerFetchResult is the outcome for a single manager. Err is set when the
// manager contributes nothing to the pass.
type ManagerFetchResult struct {
	Standing         ExternalStandingEntry
	Record           cohort.ManagerRecord
	SkippedPicks     int
	SkippedTransfers int
	Err              error
}

type FetchResult struct {
	GameWeek int
	Managers []ManagerFetchResult
}

// Records returns the successfully fetched managers in rank order.
func (r FetchResult) Records() []cohort.ManagerRecord {
	out := make([]cohort.ManagerRecord, 0, len(r.Managers))
	for _, item := range r.Managers {
		if item.Err == nil {
			out = append(out, item.Record)
		}
	}
	return out
}

func (r FetchResult) FailedCount() int {
	failed := 0
	for _, item := range r.Managers {
		if item.Err != nil {
			failed++
		}
	}
	return failed
}

// SnapshotFetcher collects the top of a league's standings and each
// manager's picks and transfers for one gameweek.
type SnapshotFetcher struct {
	league       LeagueProvider
	reference    reference.Repository
	knownPlayers *cache.Store[map[int64]struct{}]
	logger       *logging.Logger
}

func NewSnapshotFetcher(league LeagueProvider, referenceRepo reference.Repository, logger *logging.Logger) *SnapshotFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotFetcher{
		league:       league,
		reference:    referenceRepo,
		knownPlayers: cache.NewStore[map[int64]struct{}](knownPlayersCacheTTL),
		logger:       logger,
	}
}

// InvalidateKnownPlayers forces the next fetch to reload the local player
// table, typically after a reference sync.
func (f *SnapshotFetcher) InvalidateKnownPlayers() {
	f.knownPlayers.Delete(knownPlayersCacheKey)
}

// FetchStandings reads ceil(cohortSize/50) pages and returns at most
// cohortSize entries ordered by rank. A failed page is skipped; the call fails
// only when no entry could be read at all.
func (f *SnapshotFetcher) FetchStandings(ctx context.Context, leagueID string, cohortSize int) ([]ExternalStandingEntry, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" || cohortSize < 1 {
		return nil, fmt.Errorf("%w: league id and cohort size >= 1 are required", ErrInvalidInput)
	}

	pages := (cohortSize + cohort.StandingsPageSize - 1) / cohort.StandingsPageSize
	entries := make([]ExternalStandingEntry, 0, pages*cohort.StandingsPageSize)
	var pageErrs []error
	for page := 1; page <= pages; page++ {
		result, err := f.league.FetchStandingsPage(ctx, leagueID, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			pageErrs = append(pageErrs, err)
			f.logger.WarnContext(ctx, "standings page fetch failed",
				"league_id", leagueID,
				"page", page,
				"error", err,
			)
			continue
		}
		entries = append(entries, result.Entries...)
		f.logger.DebugContext(ctx, "standings page fetched",
			"league_id", leagueID,
			"page", page,
			"entries", len(result.Entries),
		)
		if !result.HasNext {
			break
		}
	}
	if len(entries) == 0 && len(pageErrs) > 0 {
		return nil, fmt.Errorf("fetch standings league=%s: %w", leagueID, errors.Join(pageErrs...))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].EntryID < entries[j].EntryID
	})
	entries = dedupeStandings(entries)
	if len(entries) > cohortSize {
		entries = entries[:cohortSize]
	}
	return entries, nil
}

// Fetch runs the whole per-gameweek fetch. Only standings or local player
// table failures are returned as errors; manager failures are reported in
// the result.
func (f *SnapshotFetcher) Fetch(ctx context.Context, input FetchInput) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotFetcher.Fetch")
	defer span.End()

	known, err := f.knownPlayers.GetOrLoad(ctx, knownPlayersCacheKey, f.loadKnownPlayers)
	if err != nil {
		return FetchResult{}, err
	}

	standings, err := f.FetchStandings(ctx, input.LeagueID, input.CohortSize)
	if err != nil {
		return FetchResult{}, err
	}
	f.logger.InfoContext(ctx, "standings fetched",
		"game_week", input.GameWeek,
		"league_id", input.LeagueID,
		"managers", len(standings),
	)

	result := FetchResult{
		GameWeek: input.GameWeek,
		Managers: make([]ManagerFetchResult, len(standings)),
	}
	if input.Workers <= 1 {
		for i, standing := range standings {
			if ctx.Err() != nil {
				return FetchResult{}, ctx.Err()
			}
			result.Managers[i] = f.fetchManager(ctx, input.GameWeek, standing, known)
			f.logProgress(ctx, i+1, len(standings))
		}
		f.logFinished(ctx, result)
		return result, nil
	}

	pool, err := ants.NewPool(input.Workers)
	if err != nil {
		return FetchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var done atomic.Int32
	var workers sync.WaitGroup
	for i, standing := range standings {
		i, standing := i, standing
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			// Each slot is written by exactly one task, so rank order survives.
			result.Managers[i] = f.fetchManager(ctx, input.GameWeek, standing, known)
			f.logProgress(ctx, int(done.Add(1)), len(standings))
		}); err != nil {
			workers.Done()
			workers.Wait()
			return FetchResult{}, fmt.Errorf("submit manager fetch to worker pool: %w", err)
		}
	}
	workers.Wait()

	if ctx.Err() != nil {
		return FetchResult{}, ctx.Err()
	}
	f.logFinished(ctx, result)
	return result, nil
}

func (f *SnapshotFetcher) logFinished(ctx context.Context, result FetchResult) {
	f.logger.InfoContext(ctx, "manager fetch finished",
		"game_week", result.GameWeek,
		"managers", len(result.Managers),
		"failed", result.FailedCount(),
	)
}

func (f *SnapshotFetcher) logProgress(ctx context.Context, processed, total int) {
	if processed%progressLogInterval == 0 {
		f.logger.InfoContext(ctx, "managers processed", "processed", processed, "total", total)
	}
}

func (f *SnapshotFetcher) fetchManager(ctx context.Context, gameWeek int, standing ExternalStandingEntry, known map[int64]struct{}) ManagerFetchResult {
	out := ManagerFetchResult{Standing: standing}
	logger := f.logger.With("entry_id", standing.EntryID, "rank", standing.Rank, "game_week", gameWeek)

	picks, err := f.league.FetchManagerPicks(ctx, standing.EntryID, gameWeek)
	if err != nil {
		out.Err = fmt.Errorf("fetch picks: %w", err)
		logger.WarnContext(ctx, "manager fetch failed, excluding from pass", "error", out.Err)
		return out
	}
	transfers, err := f.league.FetchManagerTransfers(ctx, standing.EntryID)
	if err != nil {
		out.Err = fmt.Errorf("fetch transfers: %w", err)
		logger.WarnContext(ctx, "manager fetch failed, excluding from pass", "error", out.Err)
		return out
	}

	record := cohort.ManagerRecord{
		Snapshot: cohort.ManagerSnapshot{
			EntryID:     standing.EntryID,
			GameWeek:    gameWeek,
			PlayerName:  standing.PlayerName,
			EntryName:   standing.EntryName,
			Rank:        standing.Rank,
			LastRank:    standing.LastRank,
			TotalPoints: standing.TotalPoints,
			EventPoints: picks.EventPoints,
			ActiveChip:  picks.ActiveChip,
			Bank:        picks.Bank,
			TeamValue:   picks.TeamValue,
		},
		Picks:     make([]cohort.SquadPick, 0, len(picks.Picks)),
		Transfers: make([]cohort.TransferEvent, 0),
	}

	seenPicks := make(map[int64]struct{}, len(picks.Picks))
	for _, pick := range picks.Picks {
		if _, ok := known[pick.PlayerID]; !ok {
			out.SkippedPicks++
			logger.WarnContext(ctx, "pick references unknown player, skipping", "player_id", pick.PlayerID)
			continue
		}
		if _, dup := seenPicks[pick.PlayerID]; dup {
			continue
		}
		seenPicks[pick.PlayerID] = struct{}{}
		record.Picks = append(record.Picks, cohort.SquadPick{
			EntryID:       standing.EntryID,
			GameWeek:      gameWeek,
			PlayerID:      pick.PlayerID,
			Position:      pick.Position,
			IsCaptain:     pick.IsCaptain,
			IsViceCaptain: pick.IsViceCaptain,
			Multiplier:    pick.Multiplier,
		})
	}

	type transferKey struct{ in, out int64 }
	seenTransfers := make(map[transferKey]struct{})
	for _, transfer := range transfers {
		if transfer.GameWeek != gameWeek {
			continue
		}
		_, inKnown := known[transfer.PlayerInID]
		_, outKnown := known[transfer.PlayerOutID]
		if !inKnown || !outKnown {
			out.SkippedTransfers++
			logger.WarnContext(ctx, "transfer references unknown player, skipping",
				"player_in_id", transfer.PlayerInID,
				"player_out_id", transfer.PlayerOutID,
			)
			continue
		}
		key := transferKey{in: transfer.PlayerInID, out: transfer.PlayerOutID}
		if _, dup := seenTransfers[key]; dup {
			continue
		}
		seenTransfers[key] = struct{}{}
		record.Transfers = append(record.Transfers, cohort.TransferEvent{
			EntryID:       standing.EntryID,
			GameWeek:      gameWeek,
			PlayerInID:    transfer.PlayerInID,
			PlayerOutID:   transfer.PlayerOutID,
			PlayerInCost:  transfer.PlayerInCost,
			PlayerOutCost: transfer.PlayerOutCost,
			TransferredAt: transfer.Time,
		})
	}

	out.Record = record
	return out
}

func (f *SnapshotFetcher) loadKnownPlayers(ctx context.Context) (map[int64]struct{}, error) {
	ids, err := f.reference.ListPlayerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list league player ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: local player table is empty, run reference sync first", ErrNotFound)
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// dedupeStandings drops repeated entry ids, which can appear when the
// standings shift between page reads. Input must be sorted by rank.
func dedupeStandings(in []ExternalStandingEntry) []ExternalStandingEntry {
	seen := make(map[int64]struct{}, len(in))
	out := make([]ExternalStandingEntry, 0, len(in))
	for _, item := range in {
		if _, ok := seen[item.EntryID]; ok {
			continue
		}
		seen[item.EntryID] = struct{}{}
		out = append(out, item)
	}
	return out
}
