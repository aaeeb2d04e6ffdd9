package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"RaceStatSync/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeDriverRepo struct {
	drivers  []model.Driver
	inserted []*model.Driver
}

func (f *fakeDriverRepo) InsertIfAbsent(ctx context.Context, driver *model.Driver) error {
	f.inserted = append(f.inserted, driver)
	return nil
}

func (f *fakeDriverRepo) ListIDs(ctx context.Context) (map[uint64]struct{}, error) {
	ids := make(map[uint64]struct{}, len(f.drivers)+len(f.inserted))
	for _, d := range f.drivers {
		ids[d.ID] = struct{}{}
	}
	for _, d := range f.inserted {
		ids[d.ID] = struct{}{}
	}
	return ids, nil
}

func (f *fakeDriverRepo) ListAll(ctx context.Context) ([]model.Driver, error) {
	return f.drivers, nil
}

type finishedRun struct {
	id      uint64
	status  string
	summary datatypes.JSON
}

type fakeRunRepo struct {
	created  []*model.SyncRun
	finished []finishedRun
}

func (f *fakeRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	run.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRepo) Finish(ctx context.Context, id uint64, status string, summary datatypes.JSON) error {
	f.finished = append(f.finished, finishedRun{id: id, status: status, summary: summary})
	return nil
}

func (f *fakeRunRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	return f.created, nil
}

const salaryPage = `<html>
<head>
<title>Salaries</title>
<script type="text/javascript">var promo = "Fake Person, $33";</script>
</head>
<body>
<style>.price { font-weight: bold }</style>
<h1>2025 NASCAR Fantasy Salaries, Segment 2</h1>
<ul>
<li>Kyle Larson, $28</li>
<li>Chase Eliot $21</li>
<li>Jimmie Johnson $19</li>
<li>Road America $99</li>
</ul>
<p>Prices subject to change.</p>
</body>
</html>`

func rosterDrivers() []model.Driver {
	return []model.Driver{
		{ID: 5, DisplayName: "Kyle Larson"},
		{ID: 9, DisplayName: "Chase Elliott"},
		{ID: 11, DisplayName: "Denny Hamlin"},
	}
}

func fourTracks() []TrackPick {
	return []TrackPick{
		{TrackID: 101, Name: "Phoenix Raceway"},
		{TrackID: 102, Name: "Talladega Superspeedway"},
		{TrackID: 103, Name: "Dover Motor Speedway"},
		{TrackID: 104, Name: "Kansas Speedway"},
	}
}

func TestLoadSegmentMatchesFuzzyAndKeepsUnmatched(t *testing.T) {
	t.Parallel()

	salaryRepo := &fakeSalaryRepo{}
	runRepo := &fakeRunRepo{}
	svc := NewSalaryService(salaryRepo, &fakeDriverRepo{drivers: rosterDrivers()}, runRepo, testConfig(), testLogger())

	got, err := svc.LoadSegment(context.Background(), &SegmentLoadRequest{
		Year:     2025,
		Segment:  2,
		Tracks:   fourTracks(),
		PageHTML: salaryPage,
	})
	require.NoError(t, err)

	// 脚本里的假条目被剔除，Road America 因超价被剔除
	require.Len(t, got.Matched, 2)
	require.Equal(t, uint64(5), got.Matched[0].DriverID)
	require.Equal(t, 28, got.Matched[0].Salary)
	require.InDelta(t, 1.0, got.Matched[0].Ratio, 1e-9)
	require.Equal(t, "Chase Elliott", got.Matched[1].FullName)
	require.Equal(t, 21, got.Matched[1].Salary)
	require.InDelta(t, 22.0/24.0, got.Matched[1].Ratio, 1e-9)

	// 未达阈值的条目带着最近候选留底
	require.Len(t, got.Unmatched, 1)
	require.Equal(t, "Jimmie Johnson", got.Unmatched[0].Name)
	require.Equal(t, "Kyle Larson", got.Unmatched[0].Candidate)
	require.InDelta(t, 0.4, got.Unmatched[0].Ratio, 1e-9)

	// 落库内容与返回一致
	require.Equal(t, 2025, salaryRepo.gotYear)
	require.Equal(t, 2, salaryRepo.gotSegment)
	require.Len(t, salaryRepo.gotSalaries, 2)
	require.Equal(t, uint64(9), salaryRepo.gotSalaries[1].DriverID)
	require.Len(t, salaryRepo.gotUnmatched, 1)
	require.JSONEq(t,
		`{"name":"Jimmie Johnson","salary":19,"candidate":"Kyle Larson","ratio":0.4}`,
		string(salaryRepo.gotUnmatched[0].Context))

	require.Len(t, salaryRepo.gotTracks, 4)
	require.Equal(t, 1, salaryRepo.gotTracks[0].Position)
	require.Equal(t, "phoenix_raceway", salaryRepo.gotTracks[0].Slug)
	require.Equal(t, 4, salaryRepo.gotTracks[3].Position)
	require.Equal(t, "kansas_speedway", salaryRepo.gotTracks[3].Slug)

	require.Len(t, runRepo.created, 1)
	require.Equal(t, model.RunKindSalaries, runRepo.created[0].Kind)
	require.Equal(t, model.RunStatusCompleted, runRepo.created[0].Status)
}

func TestLoadSegmentDedupesSameDriver(t *testing.T) {
	t.Parallel()

	page := `<html><body><ul>
<li>Chase Elliott, $21</li>
<li>Chase Eliot, $18</li>
</ul></body></html>`

	salaryRepo := &fakeSalaryRepo{}
	svc := NewSalaryService(salaryRepo, &fakeDriverRepo{drivers: rosterDrivers()}, &fakeRunRepo{}, testConfig(), testLogger())

	got, err := svc.LoadSegment(context.Background(), &SegmentLoadRequest{
		Year: 2025, Segment: 2, Tracks: fourTracks(), PageHTML: page,
	})
	require.NoError(t, err)
	// 两种写法命中同一车手，只保留先出现的报价
	require.Len(t, got.Matched, 1)
	require.Equal(t, uint64(9), got.Matched[0].DriverID)
	require.Equal(t, 21, got.Matched[0].Salary)
	require.Len(t, salaryRepo.gotSalaries, 1)
}

func TestLoadSegmentRequiresExactlyFourTracks(t *testing.T) {
	t.Parallel()

	svc := NewSalaryService(&fakeSalaryRepo{}, &fakeDriverRepo{}, &fakeRunRepo{}, testConfig(), testLogger())
	_, err := svc.LoadSegment(context.Background(), &SegmentLoadRequest{
		Year: 2025, Segment: 2, Tracks: fourTracks()[:3], PageHTML: salaryPage,
	})
	require.Error(t, err)
}

func TestLoadSegmentErrorsWhenNoLinesExtracted(t *testing.T) {
	t.Parallel()

	svc := NewSalaryService(&fakeSalaryRepo{}, &fakeDriverRepo{drivers: rosterDrivers()}, &fakeRunRepo{}, testConfig(), testLogger())
	_, err := svc.LoadSegment(context.Background(), &SegmentLoadRequest{
		Year: 2025, Segment: 2, Tracks: fourTracks(),
		PageHTML: "<html><body><p>Nothing here today</p></body></html>",
	})
	require.Error(t, err)
}

func TestLoadSegmentFetchesPageWithBrowserUA(t *testing.T) {
	t.Parallel()

	uaCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case uaCh <- r.Header.Get("User-Agent"):
		default:
		}
		_, _ = w.Write([]byte(salaryPage))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Salary.PageURL = srv.URL
	svc := NewSalaryService(&fakeSalaryRepo{}, &fakeDriverRepo{drivers: rosterDrivers()}, &fakeRunRepo{}, cfg, testLogger())

	got, err := svc.LoadSegment(context.Background(), &SegmentLoadRequest{
		Year: 2025, Segment: 2, Tracks: fourTracks(),
	})
	require.NoError(t, err)
	require.Equal(t, browserUA, <-uaCh)
	require.Len(t, got.Matched, 2)
}
