package service

import (
	"context"
	"fmt"
	"testing"

	"RaceStatSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

type fakeFantasyRepo struct {
	unscored   []string
	results    map[string][]model.RaceResult
	resultsErr map[string]error
	inserted   map[string][]*model.FantasyScore
	seeded     []*model.PointsScale
}

func newFakeFantasyRepo() *fakeFantasyRepo {
	return &fakeFantasyRepo{
		results:    make(map[string][]model.RaceResult),
		resultsErr: make(map[string]error),
		inserted:   make(map[string][]*model.FantasyScore),
	}
}

func (f *fakeFantasyRepo) SeedScale(ctx context.Context, entries []*model.PointsScale) error {
	f.seeded = entries
	return nil
}

func (f *fakeFantasyRepo) ListUnscoredRaceIDs(ctx context.Context) ([]string, error) {
	return f.unscored, nil
}

func (f *fakeFantasyRepo) GetResultsByRace(ctx context.Context, raceID string) ([]model.RaceResult, error) {
	if err := f.resultsErr[raceID]; err != nil {
		return nil, err
	}
	return f.results[raceID], nil
}

func (f *fakeFantasyRepo) InsertScores(ctx context.Context, scores []*model.FantasyScore) error {
	if len(scores) == 0 {
		return nil
	}
	f.inserted[scores[0].RaceID] = scores
	return nil
}

func TestBuildRaceScoresScaleBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		finishPos *int
		startPos  *int
		wantRace  int
		wantQual  int
		wantQLB   int
		wantTotal int
	}{
		{name: "冠军", finishPos: intPtr(1), wantRace: 300, wantTotal: 300},
		{name: "档位末名41", finishPos: intPtr(41), wantRace: 5, wantTotal: 5},
		{name: "超出档位42名零分", finishPos: intPtr(42), wantRace: 0, wantTotal: 0},
		{name: "完赛名次缺失零分", finishPos: nil, wantRace: 0, wantTotal: 0},
		{name: "杆位发车拿档位分加杆位奖", startPos: intPtr(1), wantQual: 75, wantQLB: 25, wantTotal: 100},
		{name: "发车15名拿1分", startPos: intPtr(15), wantQual: 1, wantTotal: 1},
		{name: "发车16名零分", startPos: intPtr(16), wantQual: 0, wantTotal: 0},
		{name: "发车名次缺失零分", startPos: nil, wantQual: 0, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := []model.RaceResult{{
				RaceID:    "r1",
				DriverID:  5,
				FinishPos: tt.finishPos,
				StartPos:  tt.startPos,
			}}
			scores := buildRaceScores("r1", results)
			require.Len(t, scores, 1)
			require.Equal(t, tt.wantRace, scores[0].RacePts)
			require.Equal(t, tt.wantQual, scores[0].QualifyingPts)
			require.Equal(t, tt.wantQLB, scores[0].QualLeaderBonus)
			require.Equal(t, 0, scores[0].RaceLeaderBonus)
			require.Equal(t, tt.wantTotal, scores[0].TotalPts)
		})
	}
}

func TestBuildRaceScoresLeaderBonusSharedOnTie(t *testing.T) {
	t.Parallel()

	results := []model.RaceResult{
		{RaceID: "r1", DriverID: 1, LapsLed: intPtr(50)},
		{RaceID: "r1", DriverID: 2, LapsLed: intPtr(50)},
		{RaceID: "r1", DriverID: 3, LapsLed: intPtr(10)},
		{RaceID: "r1", DriverID: 4, LapsLed: nil},
	}
	scores := buildRaceScores("r1", results)
	require.Len(t, scores, 4)
	require.Equal(t, RaceLeaderBonus, scores[0].RaceLeaderBonus)
	require.Equal(t, RaceLeaderBonus, scores[1].RaceLeaderBonus)
	require.Equal(t, 0, scores[2].RaceLeaderBonus)
	require.Equal(t, 0, scores[3].RaceLeaderBonus)
}

func TestBuildRaceScoresNoLeaderBonusWhenNobodyLed(t *testing.T) {
	t.Parallel()

	results := []model.RaceResult{
		{RaceID: "r1", DriverID: 1, LapsLed: intPtr(0)},
		{RaceID: "r1", DriverID: 2, LapsLed: nil},
	}
	for _, sc := range buildRaceScores("r1", results) {
		require.Equal(t, 0, sc.RaceLeaderBonus)
	}
}

func TestScoreUnscoredRacesSkipsFailedUnits(t *testing.T) {
	t.Parallel()

	repo := newFakeFantasyRepo()
	repo.unscored = []string{"r1", "r2", "r3"}
	repo.results["r1"] = []model.RaceResult{
		{RaceID: "r1", DriverID: 5, FinishPos: intPtr(1), StartPos: intPtr(2), LapsLed: intPtr(30)},
		{RaceID: "r1", DriverID: 6, FinishPos: intPtr(2), StartPos: intPtr(1), LapsLed: intPtr(5)},
	}
	repo.resultsErr["r2"] = fmt.Errorf("db gone")
	// r3 有比赛无成绩，静默跳过

	svc := NewScoringService(repo, testLogger())
	scored, err := svc.ScoreUnscoredRaces(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, scored)
	require.Len(t, repo.inserted, 1)

	scores := repo.inserted["r1"]
	require.Len(t, scores, 2)
	// 冠军 + 发车第2 + 领圈王
	require.Equal(t, 300+50+100, scores[0].TotalPts)
	// 亚军 + 杆位 + 杆位奖
	require.Equal(t, 250+75+25, scores[1].TotalPts)
}

func TestSeedPointsScaleCoversBothScales(t *testing.T) {
	t.Parallel()

	repo := newFakeFantasyRepo()
	svc := NewScoringService(repo, testLogger())
	require.NoError(t, svc.SeedPointsScale(context.Background()))
	require.Len(t, repo.seeded, 41+15)

	byKey := make(map[string]int, len(repo.seeded))
	for _, e := range repo.seeded {
		byKey[fmt.Sprintf("%s/%d", e.ScaleType, e.Position)] = e.Points
	}
	require.Equal(t, 300, byKey[model.ScaleRace+"/1"])
	require.Equal(t, 5, byKey[model.ScaleRace+"/41"])
	require.Equal(t, 8, byKey[model.ScaleQualifying+"/11"])
	require.Equal(t, 1, byKey[model.ScaleQualifying+"/15"])
}
