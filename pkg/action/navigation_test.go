package action

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"

	"github.com/entrhq/deepact/pkg/logging"
)

func newTestWatcher(buffer int) *Watcher {
	return &Watcher{
		pages:         make(chan playwright.Page, buffer),
		raceTimeout:   time.Hour,
		settleTimeout: time.Second,
		quietWindow:   100 * time.Millisecond,
		logger:        logging.Nop(),
	}
}

func TestWatcherDrain(t *testing.T) {
	w := newTestWatcher(4)
	w.pages <- nil
	w.pages <- nil
	w.pages <- nil

	w.Drain()
	assert.Empty(t, w.pages)

	// Draining an empty watcher must not block.
	done := make(chan struct{})
	go func() {
		w.Drain()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drain blocked on an empty channel")
	}
}

func TestWatcherSettleHonorsCancellation(t *testing.T) {
	w := newTestWatcher(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		// raceTimeout is an hour: only the cancelled context can let
		// this return promptly, and it must return before touching the
		// nil page.
		w.Settle(ctx, "http://example.test/before")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Settle did not honor context cancellation")
	}
}

func TestQuietWindowScriptContract(t *testing.T) {
	assert.Contains(t, quietWindowScript, "MutationObserver")
	assert.Contains(t, quietWindowScript, "observer.disconnect()")
	assert.Contains(t, quietWindowScript, "params.quietMs")
	assert.Contains(t, quietWindowScript, "params.timeoutMs")
	assert.Contains(t, quietWindowScript, "clearTimeout")
}
