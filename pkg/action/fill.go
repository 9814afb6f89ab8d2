package action

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// comboboxProbeScript reports whether an element behaves as an ARIA
// combobox: the role on itself or a nearest ancestor, or an
// aria-autocomplete mode that implies a suggestion list.
const comboboxProbeScript = `el => {
	const role = (el.getAttribute('role') || '').toLowerCase();
	if (role === 'combobox') return true;
	const auto = (el.getAttribute('aria-autocomplete') || '').toLowerCase();
	if (auto === 'list' || auto === 'both') return true;
	return el.closest('[role="combobox"]') !== null;
}`

// expandedProbeScript reports whether the element's combobox (itself or
// the nearest ancestor holding the role) currently shows its popup.
const expandedProbeScript = `el => {
	const holder = el.closest('[role="combobox"]') || el;
	return (holder.getAttribute('aria-expanded') || '').toLowerCase() === 'true';
}`

// performFill clears the field and sets the new text. Combobox-like
// targets get a commit sequence afterwards so an open suggestion list
// does not swallow the value; plain fields receive no key events.
func (e *Executor) performFill(req Request, loc playwright.Locator) error {
	text := req.Arg(0)
	timeout := ms(e.opts.ClickTimeout)

	if err := loc.Clear(playwright.LocatorClearOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("clearing element: %w", err)
	}

	combobox := e.probeBool(loc, comboboxProbeScript, nil)

	if err := loc.Fill(text, playwright.LocatorFillOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("filling element: %w", err)
	}
	if !combobox {
		return nil
	}

	e.opts.Logger.Debugf("Element behaves as a combobox, sending commit sequence")
	if err := loc.Focus(playwright.LocatorFocusOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("focusing combobox: %w", err)
	}
	if err := loc.Press("Enter", playwright.LocatorPressOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("committing combobox value: %w", err)
	}

	// Some widgets need an explicit highlight step before Enter commits.
	if e.probeBool(loc, expandedProbeScript, nil) {
		if err := loc.Press("ArrowDown", playwright.LocatorPressOptions{Timeout: timeout}); err != nil {
			return fmt.Errorf("highlighting suggestion: %w", err)
		}
		if err := loc.Press("Enter", playwright.LocatorPressOptions{Timeout: timeout}); err != nil {
			return fmt.Errorf("committing suggestion: %w", err)
		}
	}
	return nil
}
