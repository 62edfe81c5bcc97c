package extract

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/hazyhaar/quinimind/draw"
)

func TestParseDraw_FullPage(t *testing.T) {
	d, err := ParseDraw(mustParse(t, resultsPage))
	if err != nil {
		t.Fatalf("parse draw: %v", err)
	}
	if d.ID != 3330 {
		t.Errorf("id: got %d, want 3330", d.ID)
	}
	if d.Date != "14-12-2025" {
		t.Errorf("date: got %q", d.Date)
	}
	if len(d.Missing) != 0 {
		t.Errorf("missing: %v", d.Missing)
	}
	want := map[draw.Modality][draw.Size]int{
		draw.Traditional:  {0, 25, 26, 28, 34, 41},
		draw.SecondChance: {3, 11, 17, 29, 38, 45},
		draw.Revenge:      {2, 9, 13, 21, 30, 44},
		draw.AlwaysWins:   {6, 12, 19, 27, 33, 40},
	}
	if !reflect.DeepEqual(d.Results, want) {
		t.Errorf("results:\n got %v\nwant %v", d.Results, want)
	}
}

func TestParseDraw_HeaderVariants(t *testing.T) {
	cases := []struct {
		name, page string
		id         int
		date       string
	}{
		{"nro", `<p>Sorteo Nro. 3330 del dia domingo 14-12-2025</p>`, 3330, "14-12-2025"},
		{"degree", `<p>Sorteo N° 3331 - 7/12/2025</p>`, 3331, "7/12/2025"},
		{"ordinal", `<p>Sorteo Nº 3332</p><p>Fecha: 21-12-2025</p>`, 3332, "21-12-2025"},
		{"reversed", `<div>Nro. Sorteo: 3333</div><span>24/12/2025</span>`, 3333, "24/12/2025"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseDraw(mustParse(t, "<html><body>"+tc.page+"</body></html>"))
			if err != nil {
				t.Fatalf("parse draw: %v", err)
			}
			if d.ID != tc.id || d.Date != tc.date {
				t.Errorf("got (%d, %q), want (%d, %q)", d.ID, d.Date, tc.id, tc.date)
			}
			if len(d.Results) != 0 || len(d.Missing) != len(draw.Modalities) {
				t.Errorf("no numbers on page: results=%v missing=%v", d.Results, d.Missing)
			}
		})
	}
}

func TestParseDraw_NoHeader(t *testing.T) {
	pages := []string{
		`<html><body><h3>TRADICIONAL</h3><p>01 - 02 - 03 - 04 - 05 - 06</p></body></html>`,
		`<html><body><h2>Sorteo Nro. 3330</h2><p>sin fecha</p></body></html>`,
		`<html><body><h2>Resultados del 14-12-2025</h2></body></html>`,
	}
	for i, p := range pages {
		if _, err := ParseDraw(mustParse(t, p)); !errors.Is(err, ErrNoDrawHeader) {
			t.Errorf("page %d: got %v, want ErrNoDrawHeader", i, err)
		}
	}
}

func TestParseDraw_PartialModalities(t *testing.T) {
	page := `<html><body>
<h2>Sorteo Nro. 3320 del dia miercoles 12-11-2025</h2>
<h3>TRADICIONAL PRIMER SORTEO</h3>
<p class="numeros">01 - 07 - 15 - 22 - 36 - 43</p>
<h3>REVANCHA</h3>
<p class="numeros">04 - 18</p>
</body></html>`
	d, err := ParseDraw(mustParse(t, page))
	if err != nil {
		t.Fatalf("parse draw: %v", err)
	}
	if _, ok := d.Results[draw.Traditional]; !ok {
		t.Error("traditional should be extracted")
	}
	if _, ok := d.Results[draw.Revenge]; ok {
		t.Error("revenge has two numbers and must be omitted")
	}
	wantMissing := []draw.Modality{draw.SecondChance, draw.Revenge, draw.AlwaysWins}
	if !reflect.DeepEqual(d.Missing, wantMissing) {
		t.Errorf("missing: got %v, want %v", d.Missing, wantMissing)
	}
	if recs := d.Records(); len(recs) != 1 || recs[0].DrawID != 3320 {
		t.Errorf("records: %+v", recs)
	}
}

func TestResultLinks(t *testing.T) {
	index := `<html><body>
<a href="quini6/sorteo-999-del-dia-01-01-2001.htm">999</a>
<a href="/quini6/sorteo-3330-del-dia-14-12-2025.htm">3330</a>
<a href="/quini6/sorteo-3330-del-dia-14-12-2025.htm">3330 again</a>
<a href="https://www.quini-6-resultados.com.ar/quini6/sorteo-3329-del-dia-10-12-2025.htm">3329</a>
<a href="/contacto.htm">Contacto</a>
<a href="/quini6/sorteo-especial.htm">Especial</a>
<a>no href</a>
</body></html>`
	base, _ := url.Parse("https://www.quini-6-resultados.com.ar/")
	got := ResultLinks(mustParse(t, index), base, nil)
	want := []string{
		"https://www.quini-6-resultados.com.ar/quini6/sorteo-3330-del-dia-14-12-2025.htm",
		"https://www.quini-6-resultados.com.ar/quini6/sorteo-3329-del-dia-10-12-2025.htm",
		"https://www.quini-6-resultados.com.ar/quini6/sorteo-999-del-dia-01-01-2001.htm",
		"https://www.quini-6-resultados.com.ar/quini6/sorteo-especial.htm",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links:\n got %v\nwant %v", got, want)
	}
}

func TestLinkDrawNumber(t *testing.T) {
	if n, ok := LinkDrawNumber("/quini6/sorteo-3330-del-dia-14-12-2025.htm"); !ok || n != 3330 {
		t.Errorf("got (%d, %v), want (3330, true)", n, ok)
	}
	if _, ok := LinkDrawNumber("/contacto.htm"); ok {
		t.Error("link without draw number must report false")
	}
}
