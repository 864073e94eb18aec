package analysis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/estimator"
	"github.com/palemoky/contentiq/internal/intake"
	"github.com/palemoky/contentiq/internal/testutil"
)

type countingDeriver struct {
	calls atomic.Int64
}

func (d *countingDeriver) Estimate(url string) estimator.MetricBundle {
	d.calls.Add(1)
	return estimator.Derive(url)
}

// gatedStore holds the first save of a complete analysis until release is
// closed.
type gatedStore struct {
	*database.Repository
	saving  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) SaveAnalysis(ctx context.Context, a *database.Analysis) error {
	if a.State == database.StateComplete {
		g.once.Do(func() {
			close(g.saving)
			<-g.release
		})
	}
	return g.Repository.SaveAnalysis(ctx, a)
}

type panickingDeriver struct{}

func (panickingDeriver) Estimate(string) estimator.MetricBundle {
	panic("boom")
}

func newService(t *testing.T, d analysis.Deriver, delay time.Duration) *analysis.Service {
	t.Helper()

	_, repo := testutil.SetupTestDB(t)
	svc := analysis.NewService(repo, d, analysis.Options{Delay: delay, TTL: time.Hour}, zaptest.NewLogger(t))
	t.Cleanup(svc.Close)
	return svc
}

func TestCreate(t *testing.T) {
	svc, _ := testutil.SetupTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, database.StateIdle, a.State)
	assert.Nil(t, a.Result())

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.URL)
}

func TestCreateRejectsEmptyURL(t *testing.T) {
	d := &countingDeriver{}
	svc := newService(t, d, 0)

	for _, in := range []string{"", "   "} {
		_, err := svc.Analyze(context.Background(), in)
		assert.ErrorIs(t, err, intake.ErrEmptyURL)
	}
	assert.Zero(t, d.calls.Load(), "empty input must never reach derivation")
}

func TestStartLifecycle(t *testing.T) {
	const delay = 200 * time.Millisecond
	svc, _ := testutil.SetupTestService(t, delay)
	ctx := context.Background()

	a, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)

	begin := time.Now()
	started, err := svc.Start(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateAnalyzing, started.State)
	require.NotNil(t, started.StartedAt)

	// still busy well inside the delay window
	time.Sleep(delay / 4)
	mid, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateAnalyzing, mid.State)
	assert.Nil(t, mid.Result())

	done, err := svc.Wait(ctx, a.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(begin), delay)
	assert.Equal(t, database.StateComplete, done.State)
	require.NotNil(t, done.Result())
	assert.Equal(t, estimator.Derive("https://example.com"), *done.Result())
	assert.NotNil(t, done.CompletedAt)
}

func TestStartIgnoredWhileAnalyzing(t *testing.T) {
	d := &countingDeriver{}
	svc := newService(t, d, 100*time.Millisecond)
	ctx := context.Background()

	a, err := svc.Analyze(ctx, "https://example.com")
	require.NoError(t, err)

	again, err := svc.Start(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateAnalyzing, again.State)
	assert.True(t, a.StartedAt.Equal(*again.StartedAt), "re-trigger must not restart the timer")

	_, err = svc.Wait(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.calls.Load())
}

func TestStartRestartsCompleted(t *testing.T) {
	d := &countingDeriver{}
	svc := newService(t, d, 10*time.Millisecond)
	ctx := context.Background()

	first, err := svc.Estimate(ctx, "https://example.com")
	require.NoError(t, err)
	require.Equal(t, database.StateComplete, first.State)

	restarted, err := svc.Start(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateAnalyzing, restarted.State)
	assert.Nil(t, restarted.CompletedAt)

	second, err := svc.Wait(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.Result(), *second.Result())
	assert.Equal(t, int64(2), d.calls.Load())
}

func TestDerivationFailureLeavesBusyState(t *testing.T) {
	svc := newService(t, panickingDeriver{}, 0)
	ctx := context.Background()

	a, err := svc.Estimate(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, database.StateIdle, a.State)
	assert.Contains(t, a.Error, analysis.ErrDerivation.Error())
	assert.Nil(t, a.Result())
}

func TestStartNotFound(t *testing.T) {
	svc, _ := testutil.SetupTestService(t, 0)

	_, err := svc.Start(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestWaitHonorsContext(t *testing.T) {
	svc, _ := testutil.SetupTestService(t, time.Hour)

	a, err := svc.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Wait(ctx, a.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCloseAbandonsPendingAnalyses(t *testing.T) {
	_, repo := testutil.SetupTestDB(t)
	est, err := estimator.New(0)
	require.NoError(t, err)
	svc := analysis.NewService(repo, est, analysis.Options{Delay: time.Hour, TTL: time.Hour}, zaptest.NewLogger(t))

	a, err := svc.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	svc.Close()

	got, err := repo.GetAnalysis(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateIdle, got.State)
	assert.NotEmpty(t, got.Error)
}

func TestStartAfterClose(t *testing.T) {
	svc, _ := testutil.SetupTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)

	svc.Close()

	_, err = svc.Start(ctx, a.ID)
	assert.ErrorIs(t, err, analysis.ErrClosed)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateIdle, got.State)
	assert.Empty(t, got.Error)
}

func TestStartDuringCompletionRestarts(t *testing.T) {
	_, repo := testutil.SetupTestDB(t)
	store := &gatedStore{
		Repository: repo,
		saving:     make(chan struct{}),
		release:    make(chan struct{}),
	}
	d := &countingDeriver{}
	svc := analysis.NewService(store, d, analysis.Options{Delay: 10 * time.Millisecond, TTL: time.Hour}, zaptest.NewLogger(t))
	t.Cleanup(svc.Close)
	ctx := context.Background()

	a, err := svc.Analyze(ctx, "https://example.com")
	require.NoError(t, err)

	select {
	case <-store.saving:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis never reached its final save")
	}

	restarted := make(chan *database.Analysis, 1)
	go func() {
		got, err := svc.Start(ctx, a.ID)
		if err != nil {
			restarted <- nil
			return
		}
		restarted <- got
	}()

	// let Start contend with the in-flight save
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	var got *database.Analysis
	select {
	case got = <-restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	require.NotNil(t, got)
	assert.Equal(t, database.StateAnalyzing, got.State)

	done, err := svc.Wait(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, database.StateComplete, done.State)
	assert.Equal(t, int64(2), d.calls.Load())
}

func TestPurge(t *testing.T) {
	svc, db := testutil.SetupTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "https://golang.org")
	require.NoError(t, err)

	require.NoError(t, db.Model(&database.Analysis{}).
		Where("id = ?", a.ID).
		UpdateColumn("created_at", time.Now().Add(-2*time.Hour)).Error)

	n, err := svc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRunJanitorStopsOnContext(t *testing.T) {
	svc, _ := testutil.SetupTestService(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, 5*time.Millisecond)
		close(stopped)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
