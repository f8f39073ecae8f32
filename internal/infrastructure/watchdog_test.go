package infrastructure

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingBody blocks reads until its context is done
type blockingBody struct {
	ctx context.Context
}

func (b *blockingBody) Read(p []byte) (int, error) {
	<-b.ctx.Done()
	return 0, os.ErrDeadlineExceeded
}

func (b *blockingBody) Close() error { return nil }

func TestWatchdog_FiresAfterKick(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 20*time.Millisecond)
	defer wd.Cancel()
	wd.Kick()

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, context.Cause(ctx), os.ErrDeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not fire")
	}
}

func TestWatchdog_IdleUntilFirstKick(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 20*time.Millisecond)
	defer wd.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, ctx.Err())
}

func TestWatchdog_Disabled(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 0)
	wd.Kick()

	assert.NoError(t, ctx.Err())
	wd.Cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWatchdog_KickAfterCancelIsIgnored(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 20*time.Millisecond)
	wd.Cancel()
	wd.Kick()

	time.Sleep(100 * time.Millisecond)
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}

func TestWatchedBody_StalledReadReportsTimeout(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 50*time.Millisecond)
	body := &watchedBody{body: &blockingBody{ctx: ctx}, wd: wd}
	defer body.Close()

	// idle time before the first read is not a stall
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, ctx.Err())

	n, err := body.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Contains(t, err.Error(), "no data received for 50ms")
	assert.NotErrorIs(t, err, io.EOF)
}
