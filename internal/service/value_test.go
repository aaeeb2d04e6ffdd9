package service

import (
	"context"
	"testing"

	"RaceStatSync/internal/model"
	"RaceStatSync/internal/repository"

	"github.com/stretchr/testify/require"
)

type fakeStandingRepo struct {
	upserted   []*model.SeasonStanding
	topSeasons []repository.TopWinSeasonRow
	career     []repository.CareerWinsRow
	champions  []repository.ChampionRow
	gotLimit   int
}

func (f *fakeStandingRepo) Upsert(ctx context.Context, standing *model.SeasonStanding) error {
	f.upserted = append(f.upserted, standing)
	return nil
}

func (f *fakeStandingRepo) TopWinSeasons(ctx context.Context, limit int) ([]repository.TopWinSeasonRow, error) {
	f.gotLimit = limit
	return f.topSeasons, nil
}

func (f *fakeStandingRepo) CareerWins(ctx context.Context, limit int) ([]repository.CareerWinsRow, error) {
	f.gotLimit = limit
	return f.career, nil
}

func (f *fakeStandingRepo) Champions(ctx context.Context) ([]repository.ChampionRow, error) {
	return f.champions, nil
}

func newValueService(valueRepo *fakeValueRepo, salaryRepo *fakeSalaryRepo, standingRepo *fakeStandingRepo) *ValueService {
	return NewValueService(valueRepo, salaryRepo, standingRepo, testConfig(), testLogger())
}

func TestRecentFormUsesConfiguredWindow(t *testing.T) {
	t.Parallel()

	valueRepo := &fakeValueRepo{recentForm: []repository.RecentFormRow{{FullName: "Kyle Larson", AvgPts: 210.5}}}
	svc := newValueService(valueRepo, &fakeSalaryRepo{}, &fakeStandingRepo{})

	rows, err := svc.RecentForm(context.Background(), 2025, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 8, valueRepo.gotLastN)
	require.Equal(t, 2025, valueRepo.gotYear)
	require.Equal(t, 2, valueRepo.gotSegment)
}

func TestSegmentValueResolvesSegmentTracks(t *testing.T) {
	t.Parallel()

	valueRepo := &fakeValueRepo{segmentValue: []repository.SegmentValueRow{{FullName: "Denny Hamlin", Salary: 23}}}
	salaryRepo := &fakeSalaryRepo{
		tracks: []model.SegmentTrack{
			{Position: 1, TrackID: 11},
			{Position: 2, TrackID: 12},
			{Position: 3, TrackID: 13},
			{Position: 4, TrackID: 14},
		},
	}
	svc := newValueService(valueRepo, salaryRepo, &fakeStandingRepo{})

	rows, err := svc.SegmentValue(context.Background(), 2025, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []uint64{11, 12, 13, 14}, valueRepo.gotTrackIDs)
	require.Equal(t, 2, valueRepo.gotMinStarts)
}

func TestSegmentValueErrorsWhenSegmentUnconfigured(t *testing.T) {
	t.Parallel()

	svc := newValueService(&fakeValueRepo{}, &fakeSalaryRepo{}, &fakeStandingRepo{})
	_, err := svc.SegmentValue(context.Background(), 2025, 9)
	require.Error(t, err)
}

func TestTrackTypeAveragesUsesFixedFloor(t *testing.T) {
	t.Parallel()

	valueRepo := &fakeValueRepo{}
	svc := newValueService(valueRepo, &fakeSalaryRepo{}, &fakeStandingRepo{})

	_, err := svc.TrackTypeAverages(context.Background(), 2025, 2)
	require.NoError(t, err)
	require.Equal(t, 3, valueRepo.gotMinStarts)
}

func TestLeaderboardsPassLimits(t *testing.T) {
	t.Parallel()

	standingRepo := &fakeStandingRepo{
		topSeasons: []repository.TopWinSeasonRow{{FullName: "Jimmie Johnson", Year: 2007, Wins: 10}},
	}
	svc := newValueService(&fakeValueRepo{}, &fakeSalaryRepo{}, standingRepo)

	rows, err := svc.TopWinSeasons(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 15, standingRepo.gotLimit)

	_, err = svc.CareerWins(context.Background())
	require.NoError(t, err)
	require.Equal(t, 20, standingRepo.gotLimit)
}
