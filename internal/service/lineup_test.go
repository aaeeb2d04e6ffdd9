package service

import (
	"context"
	"testing"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/model"
	"RaceStatSync/internal/repository"

	"github.com/stretchr/testify/require"
)

type fakeValueRepo struct {
	candidates    []repository.CandidateRow
	recentForm    []repository.RecentFormRow
	trackHistory  []repository.TrackHistoryRow
	segmentValue  []repository.SegmentValueRow
	trackTypes    []repository.TrackTypeRow
	gotTrackIDs   []uint64
	gotMinStarts  int
	gotLastN      int
	gotYear       int
	gotSegment    int
	gotHistoryTID uint64
}

func (f *fakeValueRepo) RecentForm(ctx context.Context, year, segment, lastN int) ([]repository.RecentFormRow, error) {
	f.gotYear, f.gotSegment, f.gotLastN = year, segment, lastN
	return f.recentForm, nil
}

func (f *fakeValueRepo) TrackHistory(ctx context.Context, year, segment int, trackID uint64) ([]repository.TrackHistoryRow, error) {
	f.gotYear, f.gotSegment, f.gotHistoryTID = year, segment, trackID
	return f.trackHistory, nil
}

func (f *fakeValueRepo) SegmentValue(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]repository.SegmentValueRow, error) {
	f.gotYear, f.gotSegment, f.gotTrackIDs, f.gotMinStarts = year, segment, trackIDs, minStarts
	return f.segmentValue, nil
}

func (f *fakeValueRepo) TrackTypeAverages(ctx context.Context, year, segment, minStarts int) ([]repository.TrackTypeRow, error) {
	f.gotYear, f.gotSegment, f.gotMinStarts = year, segment, minStarts
	return f.trackTypes, nil
}

func (f *fakeValueRepo) LineupCandidates(ctx context.Context, year, segment int, trackIDs []uint64, minStarts int) ([]repository.CandidateRow, error) {
	f.gotYear, f.gotSegment, f.gotTrackIDs, f.gotMinStarts = year, segment, trackIDs, minStarts
	return f.candidates, nil
}

type fakeSalaryRepo struct {
	tracks []model.SegmentTrack

	gotYear      int
	gotSegment   int
	gotSalaries  []*model.DriverSalary
	gotTracks    []*model.SegmentTrack
	gotUnmatched []*model.UnmatchedSalary
}

func (f *fakeSalaryRepo) ReplaceSegmentData(ctx context.Context, year, segment int,
	salaries []*model.DriverSalary, tracks []*model.SegmentTrack,
	unmatched []*model.UnmatchedSalary) error {
	f.gotYear, f.gotSegment = year, segment
	f.gotSalaries, f.gotTracks, f.gotUnmatched = salaries, tracks, unmatched
	return nil
}

func (f *fakeSalaryRepo) GetSegmentTracks(ctx context.Context, year, segment int) ([]model.SegmentTrack, error) {
	return f.tracks, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Salary: config.SalaryConfig{
			Timeout:        5,
			MinPrice:       1,
			MaxPrice:       60,
			MatchThreshold: 0.78,
		},
		Fantasy: config.FantasyConfig{
			Budget:      100,
			LineupSize:  4,
			TopN:        5,
			MinStarts:   2,
			RecentRaces: 8,
		},
	}
}

func fiveCandidates() []LineupCandidate {
	return []LineupCandidate{
		{DriverID: 1, FullName: "A", Salary: 40, AvgPts: 20},
		{DriverID: 2, FullName: "B", Salary: 30, AvgPts: 18},
		{DriverID: 3, FullName: "C", Salary: 20, AvgPts: 15},
		{DriverID: 4, FullName: "D", Salary: 15, AvgPts: 12},
		{DriverID: 5, FullName: "E", Salary: 10, AvgPts: 10},
	}
}

func lineupIDs(l Lineup) []uint64 {
	ids := make([]uint64, 0, len(l.Drivers))
	for _, d := range l.Drivers {
		ids = append(ids, d.DriverID)
	}
	return ids
}

func TestBestLineupsFiltersAndRanks(t *testing.T) {
	t.Parallel()

	got := BestLineups(fiveCandidates(), 100, 4, 5)
	// 5选4共5种组合，ABCD 薪资105超预算被剔除
	require.Len(t, got, 4)

	require.Equal(t, []uint64{1, 2, 3, 5}, lineupIDs(got[0]))
	require.Equal(t, 100, got[0].TotalSalary)
	require.Equal(t, 0, got[0].Leftover)
	require.InDelta(t, 63.0, got[0].TotalPts, 1e-9)

	wantPts := []float64{63, 60, 57, 55}
	for i, l := range got {
		require.InDelta(t, wantPts[i], l.TotalPts, 1e-9)
	}
	require.Equal(t, []uint64{1, 2, 4, 5}, lineupIDs(got[1]))
	require.Equal(t, []uint64{1, 3, 4, 5}, lineupIDs(got[2]))
	require.Equal(t, []uint64{2, 3, 4, 5}, lineupIDs(got[3]))
}

func TestBestLineupsEmptyWhenBudgetTooTight(t *testing.T) {
	t.Parallel()

	got := BestLineups(fiveCandidates(), 10, 4, 5)
	require.Empty(t, got)
}

func TestBestLineupsTopNTruncatesAndTiesKeepOrder(t *testing.T) {
	t.Parallel()

	candidates := []LineupCandidate{
		{DriverID: 1, Salary: 10, AvgPts: 10},
		{DriverID: 2, Salary: 20, AvgPts: 10},
		{DriverID: 3, Salary: 30, AvgPts: 10},
		{DriverID: 4, Salary: 40, AvgPts: 10},
	}
	got := BestLineups(candidates, 100, 2, 3)
	// 六套组合全部同分，稳定排序保持枚举顺序，截断到前3
	require.Len(t, got, 3)
	require.Equal(t, []uint64{1, 2}, lineupIDs(got[0]))
	require.Equal(t, []uint64{1, 3}, lineupIDs(got[1]))
	require.Equal(t, []uint64{1, 4}, lineupIDs(got[2]))
}

func TestBestLineupsTooFewCandidates(t *testing.T) {
	t.Parallel()

	got := BestLineups(fiveCandidates()[:3], 100, 4, 5)
	require.Empty(t, got)
}

func TestOptimizeSegmentResolvesTracksAndDefaults(t *testing.T) {
	t.Parallel()

	valueRepo := &fakeValueRepo{
		candidates: []repository.CandidateRow{
			{DriverID: 1, FullName: "A", Salary: 40, AvgPts: 20},
			{DriverID: 2, FullName: "B", Salary: 30, AvgPts: 18},
			{DriverID: 3, FullName: "C", Salary: 20, AvgPts: 15},
			{DriverID: 4, FullName: "D", Salary: 15, AvgPts: 12},
			{DriverID: 5, FullName: "E", Salary: 10, AvgPts: 10},
		},
	}
	salaryRepo := &fakeSalaryRepo{
		tracks: []model.SegmentTrack{
			{Year: 2025, SegmentNum: 2, Position: 1, TrackID: 101},
			{Year: 2025, SegmentNum: 2, Position: 2, TrackID: 102},
			{Year: 2025, SegmentNum: 2, Position: 3, TrackID: 103},
			{Year: 2025, SegmentNum: 2, Position: 4, TrackID: 104},
		},
	}
	svc := NewLineupService(valueRepo, salaryRepo, testConfig(), testLogger())

	got, err := svc.OptimizeSegment(context.Background(), 2025, 2, nil)
	require.NoError(t, err)
	require.Equal(t, 2025, got.Year)
	require.Equal(t, 2, got.Segment)
	require.Equal(t, 100, got.Budget)
	require.Equal(t, 5, got.CandidateCount)
	require.Len(t, got.Lineups, 4)
	require.InDelta(t, 63.0, got.Lineups[0].TotalPts, 1e-9)

	require.Equal(t, []uint64{101, 102, 103, 104}, valueRepo.gotTrackIDs)
	require.Equal(t, 2, valueRepo.gotMinStarts)
}

func TestOptimizeSegmentErrorsWhenSegmentUnconfigured(t *testing.T) {
	t.Parallel()

	svc := NewLineupService(&fakeValueRepo{}, &fakeSalaryRepo{}, testConfig(), testLogger())
	_, err := svc.OptimizeSegment(context.Background(), 2025, 9, nil)
	require.Error(t, err)
}
