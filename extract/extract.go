// Package extract turns Quini 6 results pages into structured draws.
//
// Pages come from a site whose markup is not under our control and changes
// without notice, so number extraction is an ordered chain of strategies:
//   - anchored: walk forward from the modality label in document order
//   - sibling:  read the container that follows the label's parent
//   - table:    scan tables whose text mentions the label
//
// The first strategy that yields six distinct numbers in [0,45] wins.
// The pipeline: raw HTML → parse → draw header → numbers per modality.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses a raw page into a document tree.
func ParseHTML(raw []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// normalize upper-cases s and collapses runs of whitespace to one space.
func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// isCode reports elements whose text is never page content.
func isCode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// isHidden reports elements whose text must not anchor a modality label.
// The <title> often repeats modality names and sits before the draw header.
func isHidden(n *html.Node) bool {
	return isCode(n) || (n.Type == html.ElementNode && n.DataAtom == atom.Head)
}

// walkText calls fn for each non-blank text node in document order, pruning
// subtrees for which skip returns true. fn returns false to stop the walk.
func walkText(root *html.Node, skip func(*html.Node) bool, fn func(*html.Node) bool) {
	var f func(*html.Node) bool
	f = func(n *html.Node) bool {
		if skip(n) {
			return true
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			if !fn(n) {
				return false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !f(c) {
				return false
			}
		}
		return true
	}
	f(root)
}

// findLabel returns the first visible text node containing the normalised
// label, or nil.
func findLabel(doc *html.Node, label string) *html.Node {
	var found *html.Node
	walkText(doc, isHidden, func(n *html.Node) bool {
		if strings.Contains(normalize(n.Data), label) {
			found = n
			return false
		}
		return true
	})
	return found
}

// nextNode returns the node after n in document order, descending into
// children first.
func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return skipSubtree(n)
}

// skipSubtree returns the node after n's whole subtree in document order.
func skipSubtree(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// collectText extracts all visible text from a node subtree, space separated
// so that adjacent cells never fuse into one token.
func collectText(n *html.Node) string {
	var sb strings.Builder
	walkText(n, isCode, func(t *html.Node) bool {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(t.Data))
		return true
	})
	return sb.String()
}

// tokens splits text on anything that is not a letter or digit, so that
// "05 - 10 - 22" and "05-10-22" both give three tokens.
func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
