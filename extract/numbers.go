package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/quinimind/draw"
)

// AnchorSteps bounds the forward walk of the anchored strategy.
const AnchorSteps = 50

// Strategy names reported in Result.
const (
	StrategyAnchored = "anchored"
	StrategySibling  = "sibling"
	StrategyTable    = "table"
)

// Result is the outcome of number extraction for one modality.
type Result struct {
	// Numbers holds the winning strategy's numbers in first-encountered
	// order, or the largest partial set when no strategy succeeded.
	Numbers []int
	// Strategy names the strategy that produced six numbers; empty when
	// extraction failed.
	Strategy string
}

// Complete reports whether a strategy found six valid numbers.
func (r Result) Complete() bool {
	return r.Strategy != "" && len(r.Numbers) == draw.Size
}

// Array returns the numbers as a fixed-size array. Only meaningful when
// Complete is true.
func (r Result) Array() [draw.Size]int {
	var a [draw.Size]int
	copy(a[:], r.Numbers)
	return a
}

type strategy struct {
	name string
	run  func(doc *html.Node, label string) []int
}

// Order matters: it encodes which page layouts are most reliable.
var strategies = []strategy{
	{StrategyAnchored, anchored},
	{StrategySibling, sibling},
	{StrategyTable, table},
}

// Numbers extracts the six winning numbers printed under label. label is
// matched case-insensitively and may be embedded in surrounding text.
func Numbers(doc *html.Node, label string) Result {
	label = normalize(label)
	if doc == nil || label == "" {
		return Result{}
	}

	var best []int
	for _, s := range strategies {
		nums := s.run(doc, label)
		if len(nums) == draw.Size {
			return Result{Numbers: nums, Strategy: s.name}
		}
		if len(nums) > len(best) {
			best = nums
		}
	}
	return Result{Numbers: best}
}

// collector accumulates distinct in-range numbers up to draw.Size.
type collector struct {
	minLen, maxLen int
	nums           []int
	seen           [draw.MaxNumber + 1]bool
}

func newCollector(minLen, maxLen int) *collector {
	return &collector{minLen: minLen, maxLen: maxLen}
}

func (c *collector) full() bool { return len(c.nums) == draw.Size }

// feed adds every qualifying token of text. Returns true once full.
func (c *collector) feed(text string) bool {
	for _, tok := range tokens(text) {
		if c.full() {
			break
		}
		if len(tok) < c.minLen || len(tok) > c.maxLen || !isASCIIDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < draw.MinNumber || n > draw.MaxNumber || c.seen[n] {
			continue
		}
		c.seen[n] = true
		c.nums = append(c.nums, n)
	}
	return c.full()
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// anchored walks forward from the end of the label's element through at
// most AnchorSteps nodes collecting 1–2 digit tokens. Text inside the label's
// element is never read: headers carry dates and prize counts.
func anchored(doc *html.Node, label string) []int {
	anchor := findLabel(doc, label)
	if anchor == nil {
		return nil
	}
	c := newCollector(1, 2)

	n := skipSubtree(labelElement(anchor))
	for steps := 0; n != nil && steps < AnchorSteps; steps++ {
		if isCode(n) {
			n = skipSubtree(n)
			continue
		}
		if n.Type == html.TextNode && c.feed(n.Data) {
			break
		}
		n = nextNode(n)
	}
	return c.nums
}

// labelElement returns the element holding the label text, or the text node
// itself when it sits directly under <body>.
func labelElement(text *html.Node) *html.Node {
	p := text.Parent
	if p == nil || p.Type != html.ElementNode {
		return text
	}
	switch p.DataAtom {
	case atom.Body, atom.Html:
		return text
	}
	return p
}

// sibling reads the element following the label's parent (or the parent
// itself when it has no next sibling) and keeps exactly-two-digit tokens.
func sibling(doc *html.Node, label string) []int {
	anchor := findLabel(doc, label)
	if anchor == nil || anchor.Parent == nil {
		return nil
	}
	gdoc := goquery.NewDocumentFromNode(doc)
	parent := gdoc.FindNodes(anchor.Parent)
	container := parent.Next()
	if container.Length() == 0 {
		container = parent
	}

	c := newCollector(2, 2)
	c.feed(collectText(container.Get(0)))
	return c.nums
}

// table scans every table mentioning the label and keeps two-digit tokens
// from the first table that yields six.
func table(doc *html.Node, label string) []int {
	var best []int
	gdoc := goquery.NewDocumentFromNode(doc)
	gdoc.Find("table").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collectText(s.Get(0))
		if !strings.Contains(normalize(text), label) {
			return true
		}
		c := newCollector(2, 2)
		if c.feed(text) {
			best = c.nums
			return false
		}
		if len(c.nums) > len(best) {
			best = c.nums
		}
		return true
	})
	return best
}
