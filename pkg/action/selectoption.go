package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/deepact/pkg/locator"
)

// openAttemptTimeout bounds each individual open gesture and option
// click so a stubborn widget cannot eat the whole select budget.
const openAttemptTimeout = 800 * time.Millisecond

const nativeSelectProbeScript = `el => el.tagName === 'SELECT'`

const editableProbeScript = `el => {
	const tag = el.tagName;
	return tag === 'INPUT' || tag === 'TEXTAREA' || el.isContentEditable === true;
}`

// selectVerifyScript checks whether the wanted option committed, in
// order: the input's value, the combobox's visible text, then the text
// of the element referenced by aria-activedescendant. All comparisons
// are case-insensitive contains. getRootNode keeps the id lookup
// working for elements living inside shadow roots.
const selectVerifyScript = `(el, wanted) => {
	const needle = (wanted || '').trim().toLowerCase();
	const matches = text => (text || '').trim().toLowerCase().includes(needle);
	if (typeof el.value === 'string' && matches(el.value)) return true;
	if (matches(el.innerText || el.textContent)) return true;
	const holder = el.closest('[role="combobox"]') || el;
	const active = el.getAttribute('aria-activedescendant') || holder.getAttribute('aria-activedescendant');
	if (active) {
		const root = el.getRootNode();
		const ref = typeof root.getElementById === 'function' ? root.getElementById(active) : document.getElementById(active);
		if (ref && matches(ref.innerText || ref.textContent)) return true;
	}
	return false;
}`

// performSelect commits an option on a dropdown. Native select elements
// go through the substrate's option matching; everything else is driven
// as an ARIA combobox with keyboard commit and click fallbacks.
func (e *Executor) performSelect(req Request, res *locator.Resolution) error {
	wanted := req.Arg(0)
	if wanted == "" {
		return fmt.Errorf("selectOption requires the option text as an argument")
	}

	if e.probeBool(res.Locator, nativeSelectProbeScript, nil) {
		return e.selectNative(req, res.Locator, wanted)
	}
	return e.selectCustom(req, res, wanted)
}

// selectNative matches by label first so "Option B" selects the entry
// labelled exactly that, falling back to value matching.
func (e *Executor) selectNative(req Request, loc playwright.Locator, wanted string) error {
	opts := playwright.LocatorSelectOptionOptions{Timeout: ms(e.opts.SelectTimeout)}

	_, labelErr := loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{wanted}}, opts)
	if labelErr == nil {
		return nil
	}
	e.opts.Logger.Debugf("No option labelled %q, retrying by value: %v", wanted, labelErr)

	if _, valueErr := loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{wanted}}, opts); valueErr != nil {
		return &Error{
			Type:    ErrSelectCommitFailed,
			Method:  req.Method,
			Path:    req.Path,
			Args:    req.Args,
			Message: fmt.Sprintf("no option with label or value %q", wanted),
			Err:     valueErr,
		}
	}
	return nil
}

func (e *Executor) selectCustom(req Request, res *locator.Resolution, wanted string) error {
	loc := res.Locator
	short := ms(openAttemptTimeout)

	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		e.opts.Logger.Debugf("Scroll into view failed: %v", err)
	}
	if err := loc.Focus(playwright.LocatorFocusOptions{Timeout: ms(e.opts.SelectTimeout)}); err != nil {
		return fmt.Errorf("focusing dropdown: %w", err)
	}

	e.openDropdown(loc)

	if e.probeBool(loc, editableProbeScript, nil) {
		if err := loc.PressSequentially(wanted, playwright.LocatorPressSequentiallyOptions{Timeout: ms(e.opts.SelectTimeout)}); err != nil {
			e.opts.Logger.Debugf("Typing filter text failed: %v", err)
		}
	}
	if err := loc.Press("Enter", playwright.LocatorPressOptions{Timeout: short}); err != nil {
		e.opts.Logger.Debugf("Keyboard commit failed: %v", err)
	}
	if e.probeBool(loc, selectVerifyScript, wanted) {
		return nil
	}

	// The keyboard commit did not stick; click an option directly.
	// Options are searched from the document scope because popup lists
	// are routinely portaled out of the combobox subtree.
	candidates := res.Scope.Locator(`[role="option"]:visible`).Filter(playwright.LocatorFilterOptions{HasText: wanted})
	waitErr := candidates.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: short,
	})
	if waitErr != nil {
		e.opts.Logger.Debugf("No visible option containing %q appeared: %v", wanted, waitErr)
	}

	if exact, ok := e.findExactOption(candidates, wanted); ok {
		if err := exact.Click(playwright.LocatorClickOptions{Timeout: short}); err != nil {
			e.opts.Logger.Debugf("Exact option click failed: %v", err)
		} else if e.probeBool(loc, selectVerifyScript, wanted) {
			return nil
		}
	}
	if err := candidates.First().Click(playwright.LocatorClickOptions{Timeout: short}); err != nil {
		e.opts.Logger.Debugf("Option click failed: %v", err)
	} else if e.probeBool(loc, selectVerifyScript, wanted) {
		return nil
	}

	return &Error{
		Type:    ErrSelectCommitFailed,
		Method:  req.Method,
		Path:    req.Path,
		Args:    req.Args,
		Message: fmt.Sprintf("could not verify that option %q was selected", wanted),
	}
}

// openDropdown walks the open gestures until the widget reports an
// expanded popup. Widgets that never expose aria-expanded simply get
// the full gesture sequence.
func (e *Executor) openDropdown(loc playwright.Locator) {
	if e.probeBool(loc, expandedProbeScript, nil) {
		return
	}

	short := ms(openAttemptTimeout)
	gestures := []struct {
		name string
		run  func() error
	}{
		{"click", func() error { return loc.Click(playwright.LocatorClickOptions{Timeout: short}) }},
		{"Space", func() error { return loc.Press("Space", playwright.LocatorPressOptions{Timeout: short}) }},
		{"Enter", func() error { return loc.Press("Enter", playwright.LocatorPressOptions{Timeout: short}) }},
		{"ArrowDown", func() error { return loc.Press("ArrowDown", playwright.LocatorPressOptions{Timeout: short}) }},
	}
	for _, gesture := range gestures {
		if err := gesture.run(); err != nil {
			e.opts.Logger.Debugf("Open gesture %s failed: %v", gesture.name, err)
			continue
		}
		if e.probeBool(loc, expandedProbeScript, nil) {
			return
		}
	}
}

// findExactOption scans the candidates for one whose visible text equals
// the wanted value after trimming, ignoring case.
func (e *Executor) findExactOption(candidates playwright.Locator, wanted string) (playwright.Locator, bool) {
	count, err := candidates.Count()
	if err != nil {
		return nil, false
	}
	for i := 0; i < count; i++ {
		option := candidates.Nth(i)
		text, err := option.InnerText(playwright.LocatorInnerTextOptions{Timeout: ms(openAttemptTimeout)})
		if err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(wanted)) {
			return option, true
		}
	}
	return nil, false
}
