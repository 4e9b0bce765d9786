package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/fingerprint"
	"github.com/neoatlantis/na-gribtools/internal/interfaces/mock"
	"github.com/neoatlantis/na-gribtools/internal/models"
	"github.com/neoatlantis/na-gribtools/internal/resolver"
	"github.com/neoatlantis/na-gribtools/internal/retention"
	"github.com/neoatlantis/na-gribtools/internal/schedule"
)

type daemonFixture struct {
	daemon     *Daemon
	mockClock  *clock.Mock
	reconciles *atomic.Int32
	sweeps     *atomic.Int32
}

// newDaemonFixture wires a daemon whose resolver always lands on REUSE, so
// every reconcile pass is exactly one index read.
func newDaemonFixture(t *testing.T, start time.Time) *daemonFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	sched, err := schedule.NewClock(6*time.Hour, 3*time.Hour, time.Time{})
	require.NoError(t, err)
	policy, err := retention.NewPolicy(9*time.Hour, 6*time.Hour, 3*time.Hour)
	require.NoError(t, err)
	manifest, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)

	expected := fingerprint.Fingerprint("v1", manifest.Current())

	f := &daemonFixture{
		mockClock:  clock.NewMock(),
		reconciles: &atomic.Int32{},
		sweeps:     &atomic.Int32{},
	}
	f.mockClock.Set(start)

	index := mock.NewMockArchiveIndex(ctrl)
	index.EXPECT().ReadEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, release models.ReleaseInstant) (*models.ArchiveEntry, error) {
			f.reconciles.Add(1)
			completed := release.Add(3 * time.Hour)
			return &models.ArchiveEntry{
				Release:     release,
				Fingerprint: expected,
				Status:      models.BuildStatusComplete,
				BuildID:     "build-1",
				CreatedAt:   release.Add(3 * time.Hour),
				CompletedAt: &completed,
			}, nil
		}).AnyTimes()
	index.EXPECT().ListEntries(gomock.Any()).
		DoAndReturn(func(context.Context) ([]models.ArchiveEntry, error) {
			f.sweeps.Add(1)
			return nil, nil
		}).AnyTimes()

	shape := mock.NewMockShapeSource(ctrl)
	shape.EXPECT().Current().Return(manifest.Current()).AnyTimes()

	res := resolver.New(resolver.Params{
		Clock:           sched,
		Policy:          policy,
		Index:           index,
		Shape:           shape,
		Builder:         mock.NewMockArtifactBuilder(ctrl),
		ChecksumKey:     "v1",
		StaleBuildAfter: 45 * time.Minute,
		Logger:          zap.NewNop(),
	})

	f.daemon = New(res, sched, zap.NewNop(), WithClock(f.mockClock))
	return f
}

func eventually(t *testing.T, counter *atomic.Int32, want int32) {
	t.Helper()
	assert.Eventually(t, func() bool { return counter.Load() >= want },
		2*time.Second, 5*time.Millisecond)
}

func TestRunReconcilesAndSweepsOnStart(t *testing.T) {
	f := newDaemonFixture(t, time.Date(2017, time.December, 3, 4, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.daemon.Run(ctx) }()

	eventually(t, f.reconciles, 1)
	eventually(t, f.sweeps, 1)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunReconcilesWhenNextReleaseLands(t *testing.T) {
	// 04:00 UTC: next data lands at 09:00 (06:00 run + 3h delay).
	f := newDaemonFixture(t, time.Date(2017, time.December, 3, 4, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.daemon.Run(ctx) }()
	eventually(t, f.reconciles, 1)
	eventually(t, f.sweeps, 1)
	time.Sleep(50 * time.Millisecond) // let Run reach its select loop

	f.mockClock.Add(5 * time.Hour)
	eventually(t, f.reconciles, 2)
}

func TestRunSweepsOnInterval(t *testing.T) {
	f := newDaemonFixture(t, time.Date(2017, time.December, 3, 4, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.daemon.Run(ctx) }()
	eventually(t, f.sweeps, 1)
	time.Sleep(50 * time.Millisecond) // let Run reach its select loop

	f.mockClock.Add(time.Hour)
	eventually(t, f.sweeps, 2)
}

func TestTriggerForcesReconcile(t *testing.T) {
	f := newDaemonFixture(t, time.Date(2017, time.December, 3, 4, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.daemon.Run(ctx) }()
	eventually(t, f.reconciles, 1)

	f.daemon.Trigger()
	eventually(t, f.reconciles, 2)
}
