package action

import (
	"strings"
	"unicode/utf8"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html"

	"github.com/entrhq/deepact/pkg/locator"
)

// describeScript caps the serialized element so huge subtrees do not
// flood transcripts.
const describeScript = `el => el.outerHTML.slice(0, 2048)`

// maxDescriptionText caps the flattened text of a description.
const maxDescriptionText = 120

// preservedAttributes are worth echoing back to the decision layer:
// identity, semantics, and the tag-specific ones that disambiguate
// similar elements.
var preservedAttributes = map[string]bool{
	"id":               true,
	"class":            true,
	"role":             true,
	"aria-label":       true,
	"aria-describedby": true,
	"href":             true,
	"src":              true,
	"alt":              true,
	"name":             true,
	"type":             true,
	"placeholder":      true,
	"value":            true,
	"title":            true,
}

// describe renders the resolved element as a single compact line for
// the outcome's resolvedDescription field. Best effort: any failure
// yields an empty description, never an error.
func (e *Executor) describe(loc playwright.Locator) string {
	raw, err := loc.Evaluate(describeScript, nil)
	if err != nil {
		e.opts.Logger.Debugf("Describing element failed: %v", err)
		return ""
	}
	markup, ok := raw.(string)
	if !ok || markup == "" {
		return ""
	}
	return compactElement(markup)
}

// compactElement renders the first element of the markup as
// `<tag attrs>text</tag>` with non-semantic attributes stripped and the
// subtree text flattened onto one line.
func compactElement(markup string) string {
	if !strings.HasPrefix(strings.TrimSpace(markup), "<") {
		return ""
	}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	node := firstElement(root, false)
	if node == nil {
		// The element itself was a document wrapper, e.g. the root
		// html element of a whole-page scroll.
		node = firstElement(root, true)
	}
	if node == nil {
		return ""
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(node.Data)
	for _, attr := range node.Attr {
		if attr.Key == locator.MarkerAttribute {
			continue
		}
		if !preservedAttributes[attr.Key] && !strings.HasPrefix(attr.Key, "data-") {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attr.Val)
		b.WriteByte('"')
	}

	text := flattenText(node)
	if text == "" {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteByte('>')
	b.WriteString(text)
	b.WriteString("</")
	b.WriteString(node.Data)
	b.WriteByte('>')
	return b.String()
}

// firstElement finds the first real element in a parsed fragment. The
// parser synthesizes html/head/body wrappers around fragments, so those
// are skipped unless acceptWrappers is set.
func firstElement(n *html.Node, acceptWrappers bool) *html.Node {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "html", "head", "body":
			if acceptWrappers {
				return n
			}
		default:
			return n
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := firstElement(child, acceptWrappers); found != nil {
			return found
		}
	}
	return nil
}

// flattenText joins the subtree's text and collapses whitespace.
func flattenText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if len(text) > maxDescriptionText {
		cut := maxDescriptionText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return text[:cut] + "..."
	}
	return text
}
