package extract

import (
	"errors"
	"regexp"
	"strconv"

	"golang.org/x/net/html"

	"github.com/hazyhaar/quinimind/draw"
)

// ErrNoDrawHeader is returned when a page carries no draw id or no date.
var ErrNoDrawHeader = errors.New("extract: draw id or date not found")

// Header phrasings seen on results pages, e.g.
// "Sorteo Nro. 3330 del dia domingo 14-12-2025", "Sorteo N° 3330",
// "Nro. Sorteo: 3330".
var drawIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sorteo\s+nro\.?\s*:?\s*(\d+)`),
	regexp.MustCompile(`(?i)sorteo\s+n\s*(?:°|º|o\.)\s*:?\s*(\d+)`),
	regexp.MustCompile(`(?i)nro\.?\s*(?:de\s+)?sorteo\s*:?\s*(\d+)`),
}

var datePattern = regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4}|\d{1,2}/\d{1,2}/\d{4})\b`)

// ParseDraw extracts the draw header and the numbers of every modality.
// Modalities whose numbers cannot be extracted are listed in Draw.Missing.
func ParseDraw(doc *html.Node) (*draw.Draw, error) {
	id, date, ok := drawHeader(doc)
	if !ok {
		return nil, ErrNoDrawHeader
	}

	d := &draw.Draw{
		ID:      id,
		Date:    date,
		Results: make(map[draw.Modality][draw.Size]int, len(draw.Modalities)),
	}
	for _, m := range draw.Modalities {
		res := Numbers(doc, m.Label())
		if !res.Complete() {
			d.Missing = append(d.Missing, m)
			continue
		}
		d.Results[m] = res.Array()
	}
	return d, nil
}

// drawHeader finds the draw id and the date. The date is taken from the
// header text when present there, else from the first date on the page.
func drawHeader(doc *html.Node) (id int, date string, ok bool) {
	walkText(doc, isCode, func(n *html.Node) bool {
		for _, re := range drawIDPatterns {
			m := re.FindStringSubmatchIndex(n.Data)
			if m == nil {
				continue
			}
			v, err := strconv.Atoi(n.Data[m[2]:m[3]])
			if err != nil || v <= 0 {
				continue
			}
			id = v
			if dm := datePattern.FindString(n.Data[m[1]:]); dm != "" {
				date = dm
			} else {
				date = datePattern.FindString(n.Data)
			}
			return false
		}
		return true
	})
	if id == 0 {
		return 0, "", false
	}

	if date == "" {
		walkText(doc, isCode, func(n *html.Node) bool {
			date = datePattern.FindString(n.Data)
			return date == ""
		})
	}
	return id, date, date != ""
}
