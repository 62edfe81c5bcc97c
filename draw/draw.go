// Package draw defines the Quini 6 data model shared by the extractor, the
// store, and the analyzer.
//
// A Draw is one results page: a draw id, an opaque date string, and up to four
// modality results. A Record is the persisted unit: one modality of one draw.
package draw

import (
	"errors"
	"fmt"
	"strings"
)

// Domain bounds for a single ball.
const (
	MinNumber = 0
	MaxNumber = 45
	// Size is the number of balls in one modality result.
	Size = 6
)

// ErrInvalidRecord is returned when a record violates the data model.
var ErrInvalidRecord = errors.New("draw: invalid record")

// ErrUnknownModality is returned by ParseModality for unrecognised input.
var ErrUnknownModality = errors.New("draw: unknown modality")

// Modality is one of the four parallel games played on the same draw.
// The underlying value is the label printed on results pages.
type Modality string

const (
	Traditional  Modality = "TRADICIONAL"
	SecondChance Modality = "LA SEGUNDA"
	Revenge      Modality = "REVANCHA"
	AlwaysWins   Modality = "SIEMPRE SALE"
)

// Modalities lists every modality in page order.
var Modalities = []Modality{Traditional, SecondChance, Revenge, AlwaysWins}

var modalityKeys = map[Modality]string{
	Traditional:  "tradicional",
	SecondChance: "laSegunda",
	Revenge:      "revancha",
	AlwaysWins:   "siempreSale",
}

// Label returns the source label used to anchor extraction and stored in the
// database.
func (m Modality) Label() string { return string(m) }

// Key returns the camelCase key used in snapshot JSON.
func (m Modality) Key() string { return modalityKeys[m] }

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	_, ok := modalityKeys[m]
	return ok
}

func (m Modality) String() string { return string(m) }

// ParseModality accepts a label in any casing or spacing ("la  segunda",
// "Siempre Sale") or a snapshot key ("laSegunda").
func ParseModality(s string) (Modality, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	for _, m := range Modalities {
		if norm == m.Label() || strings.EqualFold(strings.TrimSpace(s), m.Key()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModality, s)
}

// Record is one modality result of one draw.
type Record struct {
	DrawID   int       `json:"draw_id"`
	Date     string    `json:"date"`
	Modality Modality  `json:"modality"`
	Numbers  [Size]int `json:"numbers"`
}

// Validate checks the record: positive draw id, known modality,
// six pairwise distinct numbers within [MinNumber, MaxNumber].
func (r Record) Validate() error {
	if r.DrawID <= 0 {
		return fmt.Errorf("%w: draw id %d", ErrInvalidRecord, r.DrawID)
	}
	if !r.Modality.Valid() {
		return fmt.Errorf("%w: modality %q", ErrInvalidRecord, r.Modality)
	}
	var seen [MaxNumber + 1]bool
	for _, n := range r.Numbers {
		if n < MinNumber || n > MaxNumber {
			return fmt.Errorf("%w: number %d out of range", ErrInvalidRecord, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: number %d repeated", ErrInvalidRecord, n)
		}
		seen[n] = true
	}
	return nil
}

// Draw is the parsed content of one results page.
type Draw struct {
	ID      int
	Date    string
	Results map[Modality][Size]int
	// Missing lists the modalities for which extraction did not find six
	// valid numbers.
	Missing []Modality
}

// Records expands the draw into one Record per extracted modality, in
// Modalities order.
func (d *Draw) Records() []Record {
	var out []Record
	for _, m := range Modalities {
		nums, ok := d.Results[m]
		if !ok {
			continue
		}
		out = append(out, Record{DrawID: d.ID, Date: d.Date, Modality: m, Numbers: nums})
	}
	return out
}

// Snapshot returns the published JSON view of the draw.
func (d *Draw) Snapshot() Snapshot {
	s := Snapshot{ID: d.ID, Date: d.Date, Modes: make(map[string][]int, len(d.Results))}
	for m, nums := range d.Results {
		s.Modes[m.Key()] = append([]int(nil), nums[:]...)
	}
	return s
}

// Snapshot is the externally published latest-draw document.
// Modalities that failed extraction are absent from Modes.
type Snapshot struct {
	ID    int              `json:"id"`
	Date  string           `json:"date"`
	Modes map[string][]int `json:"modes"`
}
