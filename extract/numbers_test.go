package extract

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := ParseHTML([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestNumbers_Anchored(t *testing.T) {
	doc := mustParse(t, resultsPage)
	res := Numbers(doc, "tradicional")
	if !res.Complete() {
		t.Fatalf("expected complete result, got %+v", res)
	}
	if res.Strategy != StrategyAnchored {
		t.Errorf("strategy: got %q, want %q", res.Strategy, StrategyAnchored)
	}
	want := []int{0, 25, 26, 28, 34, 41}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_LabelEmbeddedInHeader(t *testing.T) {
	doc := mustParse(t, resultsPage)
	res := Numbers(doc, "La  Segunda")
	want := []int{3, 11, 17, 29, 38, 45}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_SameTextAsLabel(t *testing.T) {
	// The forward walk starts after the <p> holding the label, so the
	// inline numbers come from the sibling strategy reading the parent.
	doc := mustParse(t, `<html><body><p>Revancha: 01-02-03-04-05-06</p></body></html>`)
	if got := anchored(doc, "REVANCHA"); len(got) != 0 {
		t.Fatalf("anchored should not read the label element, got %v", got)
	}
	res := Numbers(doc, "REVANCHA")
	want := []int{1, 2, 3, 4, 5, 6}
	if res.Strategy != StrategySibling || !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("got %+v, want sibling %v", res, want)
	}
}

func TestNumbers_DigitsInHeaderIgnored(t *testing.T) {
	cases := []struct {
		name  string
		label string
		page  string
		want  []int
	}{
		{
			name:  "prize count",
			label: "SIEMPRE SALE",
			page: `<html><body><h3>SIEMPRE SALE (5 aciertos)</h3>
<p class="numeros">06 - 12 - 19 - 27 - 33 - 40</p></body></html>`,
			want: []int{6, 12, 19, 27, 33, 40},
		},
		{
			name:  "date",
			label: "REVANCHA",
			page: `<html><body><h3>REVANCHA 14-12-2025</h3>
<p class="numeros">02 - 09 - 13 - 21 - 30 - 44</p></body></html>`,
			want: []int{2, 9, 13, 21, 30, 44},
		},
		{
			name:  "label in nested span",
			label: "TRADICIONAL",
			page: `<html><body><h3><span>TRADICIONAL</span></h3>
<p class="numeros">00 - 25 - 26 - 28 - 34 - 41</p></body></html>`,
			want: []int{0, 25, 26, 28, 34, 41},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// WHAT: digits printed in the modality header are not numbers.
			// WHY: a wrong set passes validation and is stored first-write-wins.
			res := Numbers(mustParse(t, tc.page), tc.label)
			if res.Strategy != StrategyAnchored {
				t.Errorf("strategy: got %q, want %q", res.Strategy, StrategyAnchored)
			}
			if !reflect.DeepEqual(res.Numbers, tc.want) {
				t.Errorf("numbers: got %v, want %v", res.Numbers, tc.want)
			}
		})
	}
}

func TestNumbers_DuplicatesAndOutOfRangeDropped(t *testing.T) {
	doc := mustParse(t, `<html><body>
<h3>REVANCHA</h3>
<p>05 - 05 - 46 - 10 - 99 - 22 - 10 - 33 - 40 - 41 - 44</p>
</body></html>`)
	res := Numbers(doc, "REVANCHA")
	want := []int{5, 10, 22, 33, 40, 41}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_TitleIsNotAnAnchor(t *testing.T) {
	doc := mustParse(t, `<html><head><title>Quini 6 Revancha 2025</title></head><body>
<h2>Sorteo Nro. 3330 del dia 14-12-2025</h2>
<h3>REVANCHA</h3>
<p>02 - 09 - 13 - 21 - 30 - 44</p>
</body></html>`)
	res := Numbers(doc, "REVANCHA")
	want := []int{2, 9, 13, 21, 30, 44}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_SiblingWhenWalkBudgetExhausted(t *testing.T) {
	// The numbers sit beyond AnchorSteps nodes from the label, but inside
	// the container that follows the label's parent.
	filler := strings.Repeat("<span></span>", AnchorSteps+10)
	page := `<html><body><h3>SIEMPRE SALE</h3><div>` + filler +
		`<b>06</b><b>12</b><b>19</b><b>27</b><b>33</b><b>40</b></div></body></html>`
	doc := mustParse(t, page)

	if got := anchored(doc, "SIEMPRE SALE"); len(got) != 0 {
		t.Fatalf("anchored should find nothing, got %v", got)
	}
	res := Numbers(doc, "siempre sale")
	if res.Strategy != StrategySibling {
		t.Errorf("strategy: got %q, want %q", res.Strategy, StrategySibling)
	}
	want := []int{6, 12, 19, 27, 33, 40}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_TableFallback(t *testing.T) {
	// Label after the numbers: the forward walk and the sibling container
	// see nothing, the table holds everything.
	doc := mustParse(t, `<html><body><table>
<tr><td>07</td><td>14</td><td>18</td><td>23</td><td>35</td><td>42</td></tr>
<tr><th>SIEMPRE SALE</th></tr>
</table></body></html>`)
	res := Numbers(doc, "SIEMPRE SALE")
	if res.Strategy != StrategyTable {
		t.Fatalf("strategy: got %q, want %q (%v)", res.Strategy, StrategyTable, res.Numbers)
	}
	want := []int{7, 14, 18, 23, 35, 42}
	if !reflect.DeepEqual(res.Numbers, want) {
		t.Errorf("numbers: got %v, want %v", res.Numbers, want)
	}
}

func TestNumbers_NoMixingAcrossStrategies(t *testing.T) {
	// anchored stops at 1 2 3 (walk budget), sibling only keeps two-digit
	// tokens 10 11 12. Merged they would be six distinct numbers.
	filler := strings.Repeat("<span></span>", AnchorSteps+10)
	doc := mustParse(t, `<html><body><h3>REVANCHA</h3><div>1 2 3`+filler+`10 11 12</div></body></html>`)
	res := Numbers(doc, "REVANCHA")
	if res.Complete() {
		t.Fatalf("expected incomplete result, got %+v", res)
	}
	if res.Strategy != "" {
		t.Errorf("strategy should be empty, got %q", res.Strategy)
	}
	if len(res.Numbers) != 3 {
		t.Errorf("partial result: got %v, want one strategy's three numbers", res.Numbers)
	}
}

func TestNumbers_LabelAbsent(t *testing.T) {
	doc := mustParse(t, resultsPage)
	res := Numbers(doc, "QUINI KINO")
	if res.Complete() || len(res.Numbers) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res := Numbers(doc, "   "); res.Complete() {
		t.Error("blank label must not match")
	}
}
