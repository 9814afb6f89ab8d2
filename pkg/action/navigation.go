package action

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/deepact/pkg/logging"
)

// quietWindowScript resolves once the DOM stops mutating for the quiet
// window, or at the deadline. The observer always disconnects itself so
// repeated settles do not pile up listeners.
const quietWindowScript = `params => new Promise(resolve => {
	let quietTimer = null;
	let deadlineTimer = null;
	let observer = null;
	const finish = reason => {
		if (observer) observer.disconnect();
		clearTimeout(quietTimer);
		clearTimeout(deadlineTimer);
		resolve(reason);
	};
	const arm = () => {
		clearTimeout(quietTimer);
		quietTimer = setTimeout(() => finish('quiet'), params.quietMs);
	};
	deadlineTimer = setTimeout(() => finish('deadline'), params.timeoutMs);
	observer = new MutationObserver(arm);
	observer.observe(document.documentElement, { childList: true, subtree: true, attributes: true, characterData: true });
	arm();
})`

// Watcher notices pages opened by an action and settles the world
// afterwards. Detection is diagnostic: Settle logs what happened and
// never fails the action that triggered it.
type Watcher struct {
	page          playwright.Page
	pages         chan playwright.Page
	raceTimeout   time.Duration
	settleTimeout time.Duration
	quietWindow   time.Duration
	logger        *logging.Logger
}

// NewWatcher subscribes to the page's browsing context. The channel is
// buffered and the send non-blocking so popup bursts cannot stall the
// driver's event dispatcher.
func NewWatcher(page playwright.Page, opts Options) *Watcher {
	w := &Watcher{
		page:          page,
		pages:         make(chan playwright.Page, 4),
		raceTimeout:   opts.RaceTimeout,
		settleTimeout: opts.SettleTimeout,
		quietWindow:   opts.QuietWindow,
		logger:        opts.Logger,
	}
	page.Context().OnPage(func(opened playwright.Page) {
		select {
		case w.pages <- opened:
		default:
			w.logger.Warnf("Watcher buffer full, dropping page-open event")
		}
	})
	return w
}

// Drain discards page-open events accumulated between actions so the
// race in Settle only sees pages opened by the current action.
func (w *Watcher) Drain() {
	for {
		select {
		case <-w.pages:
		default:
			return
		}
	}
}

// Settle races a new-page event against the race window, waits for a
// fresh tab to load and for the original page to go quiet, then logs
// URL transitions. It never returns an error.
func (w *Watcher) Settle(ctx context.Context, beforeURL string) {
	timer := time.NewTimer(w.raceTimeout)
	defer timer.Stop()

	select {
	case opened := <-w.pages:
		w.waitForNewPage(opened)
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	w.settlePage(beforeURL)
}

// waitForNewPage waits for a freshly opened tab to reach a loaded
// state. Blank tabs are only noted; they carry no document to wait on.
func (w *Watcher) waitForNewPage(opened playwright.Page) {
	url := opened.URL()
	if url == "" || url == "about:blank" {
		w.logger.Infof("Action opened a blank page")
		return
	}

	w.logger.Infof("Action opened a new page: %s", url)
	err := opened.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: ms(w.settleTimeout),
	})
	if err != nil {
		w.logger.Warnf("New page did not reach a loaded state: %v", err)
	}
}

// settlePage waits out in-flight navigation and DOM churn on the
// original page, then reports URL changes.
func (w *Watcher) settlePage(beforeURL string) {
	err := w.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: ms(w.settleTimeout),
	})
	if err != nil {
		w.logger.Warnf("Page did not reach a loaded state after action: %v", err)
	}

	args := map[string]interface{}{
		"quietMs":   w.quietWindow.Milliseconds(),
		"timeoutMs": w.settleTimeout.Milliseconds(),
	}
	if _, err := w.page.Evaluate(quietWindowScript, args); err != nil {
		w.logger.Warnf("DOM settle wait failed: %v", err)
	}

	afterURL := w.page.URL()
	if afterURL != beforeURL {
		w.logger.Infof("Action navigated the page: %s -> %s", beforeURL, afterURL)
	}
}
