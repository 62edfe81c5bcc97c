package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultLinkContains matches result-page links on the index page,
// e.g. "quini6/sorteo-3330-del-dia-14-12-2025.htm".
var DefaultLinkContains = []string{"sorteo-", ".htm"}

var linkNumberPattern = regexp.MustCompile(`sorteo-(\d+)`)

// LinkDrawNumber returns the draw number embedded in a result-page link.
func LinkDrawNumber(link string) (int, bool) {
	m := linkNumberPattern.FindStringSubmatch(link)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ResultLinks lists the anchors of an index page whose href contains every
// substring in contains, resolved against base and deduplicated. Links are
// ordered newest first by embedded draw number; links without a number sort
// last, by URL descending.
func ResultLinks(doc *html.Node, base *url.URL, contains []string) []string {
	if len(contains) == 0 {
		contains = DefaultLinkContains
	}

	seen := make(map[string]bool)
	var links []string
	goquery.NewDocumentFromNode(doc).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		for _, c := range contains {
			if !strings.Contains(href, c) {
				return
			}
		}
		if base != nil {
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			href = base.ResolveReference(ref).String()
		}
		if seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})

	sort.SliceStable(links, func(i, j int) bool {
		ni, oki := LinkDrawNumber(links[i])
		nj, okj := LinkDrawNumber(links[j])
		if oki != okj {
			return oki
		}
		if ni != nj {
			return ni > nj
		}
		return links[i] > links[j]
	})
	return links
}
