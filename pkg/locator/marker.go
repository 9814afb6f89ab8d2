package locator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

const (
	// MarkerAttribute is the DOM attribute a shadow-resolved node is
	// stamped with so it stays addressable across root boundaries.
	MarkerAttribute = "data-deepact-marker"

	// MarkerScheme is the name of the registered selector engine that
	// finds marker-stamped nodes through open and closed shadow roots.
	MarkerScheme = "shadowmark"

	// closedRootsProperty is the window property holding the WeakMap of
	// host elements to their closed shadow roots.
	closedRootsProperty = "__deepactClosedRoots"
)

// NewMarker mints a marker id. Randomness combined with a timestamp keeps
// ids unique within a page even across interleaved resolutions.
func NewMarker() string {
	return fmt.Sprintf("deepact-%s-%d", uuid.New().String(), time.Now().UnixNano())
}

// MarkerSelector renders the selector addressing a marker id.
func MarkerSelector(marker string) string {
	return MarkerScheme + "=" + marker
}

// BackdoorScript returns the init script that records closed shadow roots
// as they are attached. It must be installed before any page script runs,
// and init scripts re-run on every navigation, which keeps the registry
// alive across page loads.
func BackdoorScript() string {
	return fmt.Sprintf(`(() => {
  const prop = %q;
  if (Object.getOwnPropertyDescriptor(window, prop)) {
    return;
  }
  const registry = new WeakMap();
  Object.defineProperty(window, prop, {
    value: registry,
    enumerable: false,
    configurable: false,
    writable: false,
  });
  const original = Element.prototype.attachShadow;
  Element.prototype.attachShadow = function (init) {
    const root = original.call(this, init);
    if (init && init.mode === 'closed') {
      registry.set(this, root);
    }
    return root;
  };
})();`, closedRootsProperty)
}

// markerEngineScript returns the selector engine source. The engine walks
// the queried root and every reachable shadow root, open ones through the
// shadowRoot property and closed ones through the backdoor registry.
func markerEngineScript() string {
	return fmt.Sprintf(`(() => {
  const attr = %q;
  const prop = %q;
  const shadowRootOf = (el) => {
    if (el.shadowRoot) {
      return el.shadowRoot;
    }
    const registry = window[prop];
    if (registry && typeof registry.get === 'function') {
      return registry.get(el);
    }
    return undefined;
  };
  const collect = (root, css, out) => {
    if (!root || typeof root.querySelectorAll !== 'function') {
      return;
    }
    for (const hit of root.querySelectorAll(css)) {
      out.push(hit);
    }
    for (const el of root.querySelectorAll('*')) {
      const shadow = shadowRootOf(el);
      if (shadow) {
        collect(shadow, css, out);
      }
    }
  };
  return {
    queryAll(root, selector) {
      const css = '[' + attr + '=' + JSON.stringify(selector) + ']';
      const out = [];
      if (typeof root.matches === 'function' && root.matches(css)) {
        out.push(root);
      }
      collect(root, css, out);
      if (root.nodeType === 1) {
        // Element roots also search their own shadow tree.
        const shadow = shadowRootOf(root);
        if (shadow) {
          collect(shadow, css, out);
        }
      }
      return out;
    },
    query(root, selector) {
      return this.queryAll(root, selector)[0] || null;
    },
  };
})()`, MarkerAttribute, closedRootsProperty)
}

// RegisterMarkerEngine registers the marker selector engine with the
// Playwright driver. Must run once per driver before any browser context
// is created; registering the same name twice is an error in the driver,
// so callers guard this behind their own initialization.
func RegisterMarkerEngine(pw *playwright.Playwright) error {
	script := markerEngineScript()
	return pw.Selectors.Register(MarkerScheme, playwright.Script{
		Content: playwright.String(script),
	})
}
