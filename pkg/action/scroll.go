package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// scrollStableFrames is how many consecutive identical scroll offsets
// count as "stopped" when waiting out a smooth scroll.
const scrollStableFrames = 6

const scrollIntoViewScript = `el => { el.scrollIntoView({ behavior: 'smooth', block: 'center' }); }`

// scrollToScript moves to a percentage of the scrollable range. The
// root html element scrolls the window against the viewport height;
// everything else scrolls its own box.
const scrollToScript = `(el, params) => {
	const pct = params.percent;
	if (el.tagName === 'HTML') {
		const range = document.documentElement.scrollHeight - window.innerHeight;
		window.scrollTo({ top: range * pct / 100, behavior: 'smooth' });
	} else {
		el.scrollTo({ top: (el.scrollHeight - el.clientHeight) * pct / 100, behavior: 'smooth' });
	}
}`

// chunkScript pages by one viewport or element height in the given
// direction.
const chunkScript = `(el, params) => {
	if (el.tagName === 'HTML') {
		window.scrollBy({ top: params.direction * window.innerHeight, behavior: 'smooth' });
	} else {
		el.scrollBy({ top: params.direction * el.clientHeight, behavior: 'smooth' });
	}
}`

// scrollSettleScript resolves once the scroll offset has held still for
// a run of animation frames, or at the deadline. Polling frames instead
// of sleeping a fixed delay keeps fast scrolls fast and slow smooth
// scrolls covered.
const scrollSettleScript = `(el, params) => new Promise(resolve => {
	const offset = () => el.tagName === 'HTML' ? window.scrollY : el.scrollTop;
	const deadline = Date.now() + params.timeoutMs;
	let last = offset();
	let stable = 0;
	const tick = () => {
		const current = offset();
		if (current === last) {
			stable += 1;
		} else {
			stable = 0;
			last = current;
		}
		if (stable >= params.stableFrames || Date.now() > deadline) {
			resolve(current);
			return;
		}
		requestAnimationFrame(tick);
	};
	requestAnimationFrame(tick);
})`

func (e *Executor) performScrollIntoView(loc playwright.Locator) error {
	if _, err := loc.Evaluate(scrollIntoViewScript, nil); err != nil {
		return fmt.Errorf("scrolling into view: %w", err)
	}
	return e.settleScroll(loc)
}

func (e *Executor) performScrollTo(req Request, loc playwright.Locator) error {
	pct, ok := parsePercent(req.Arg(0))
	if !ok {
		e.opts.Logger.Warnf("Unparseable scroll percentage %q, using %v%%", req.Arg(0), pct)
	}
	if _, err := loc.Evaluate(scrollToScript, map[string]interface{}{"percent": pct}); err != nil {
		return fmt.Errorf("scrolling to %v%%: %w", pct, err)
	}
	return e.settleScroll(loc)
}

func (e *Executor) performChunk(loc playwright.Locator, direction int) error {
	if _, err := loc.Evaluate(chunkScript, map[string]interface{}{"direction": direction}); err != nil {
		return fmt.Errorf("scrolling by chunk: %w", err)
	}
	return e.settleScroll(loc)
}

// settleScroll waits for the scroll position to stop moving. The script
// bounds itself with the deadline; the evaluate timeout is only a
// safety margin above it.
func (e *Executor) settleScroll(loc playwright.Locator) error {
	args := map[string]interface{}{
		"timeoutMs":    e.opts.ScrollSettle.Milliseconds(),
		"stableFrames": scrollStableFrames,
	}
	opts := playwright.LocatorEvaluateOptions{
		Timeout: playwright.Float(float64(e.opts.ScrollSettle.Milliseconds()) + 500),
	}
	if _, err := loc.Evaluate(scrollSettleScript, args, opts); err != nil {
		return fmt.Errorf("waiting for scroll to settle: %w", err)
	}
	return nil
}

// parsePercent reads a percentage argument, tolerating a trailing "%"
// and surrounding spaces. The result is clamped to [0,100]; unparseable
// input reports ok=false and maps to 0 so the scroll still runs.
func parsePercent(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if trimmed == "" {
		return 0, false
	}
	pct, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if pct < 0 {
		return 0, true
	}
	if pct > 100 {
		return 100, true
	}
	return pct, true
}
