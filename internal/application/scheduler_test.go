package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

func newSchedulerFixture(t *testing.T, manifest *fakeManifest, clock *manualClock, interval time.Duration) (*Scheduler, *recordingNotifier) {
	t.Helper()
	reconciler := newReconcilerFixture(manifest, &fakeProcesses{}, nil, nil)
	notifier := &recordingNotifier{}
	return NewScheduler(reconciler, notifier, clock, interval), notifier
}

func TestMaybeRunNotifiesPerTransition(t *testing.T) {
	exe := writeFakeExecutable(t, "bf1.exe")
	manifest := &fakeManifest{entries: []domain.ManifestEntry{
		{SoftwareID: "Origin.SFT.1", OfferID: "A", ExecutablePath: exe, InstallStatus: domain.InstallStatusReady},
	}}
	clock := &manualClock{now: time.Unix(1700000000, 0)}
	scheduler, notifier := newSchedulerFixture(t, manifest, clock, time.Minute)

	require.True(t, scheduler.MaybeRun(context.Background()))
	assert.Equal(t, []domain.LocalGame{{GameID: "A", State: domain.StateInstalled}}, notifier.all())
}

func TestMaybeRunEnforcesMinInterval(t *testing.T) {
	clock := &manualClock{now: time.Unix(1700000000, 0)}
	scheduler, _ := newSchedulerFixture(t, &fakeManifest{}, clock, time.Minute)

	require.True(t, scheduler.MaybeRun(context.Background()))
	assert.False(t, scheduler.MaybeRun(context.Background()), "second pass inside the interval is skipped")

	clock.advance(30 * time.Second)
	assert.False(t, scheduler.MaybeRun(context.Background()))

	clock.advance(31 * time.Second)
	assert.True(t, scheduler.MaybeRun(context.Background()))
}

func TestMaybeRunSkipsWhileInFlight(t *testing.T) {
	manifest := &fakeManifest{
		entered: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	clock := &manualClock{now: time.Unix(1700000000, 0)}
	scheduler, _ := newSchedulerFixture(t, manifest, clock, 0)

	firstDone := make(chan bool)
	go func() {
		firstDone <- scheduler.MaybeRun(context.Background())
	}()

	// Wait until the first pass is inside the reconciler, then try to
	// overlap it.
	<-manifest.entered
	assert.False(t, scheduler.MaybeRun(context.Background()), "overlapping pass must be rejected")

	close(manifest.block)
	assert.True(t, <-firstDone)

	// The flag is reset after the pass completes.
	manifest.entered = nil
	manifest.block = nil
	assert.True(t, scheduler.MaybeRun(context.Background()))
}

func TestMaybeRunNoChangesNoNotifications(t *testing.T) {
	clock := &manualClock{now: time.Unix(1700000000, 0)}
	scheduler, notifier := newSchedulerFixture(t, &fakeManifest{}, clock, 0)

	require.True(t, scheduler.MaybeRun(context.Background()))
	require.True(t, scheduler.MaybeRun(context.Background()))
	assert.Empty(t, notifier.all())
}
