package analysis

import "github.com/hazyhaar/quinimind/draw"

// Status classifies a heatmap row for display.
type Status string

const (
	StatusHot    Status = "hot"
	StatusCold   Status = "cold"
	StatusNormal Status = "normal"
)

// Thresholds are display heuristics, not statistical invariants. Zero is a
// valid setting for each field; negative values select the default. A
// Thresholds with every field zero is treated as unset.
type Thresholds struct {
	// NeverSeenDelay is reported as the delay of numbers never drawn.
	NeverSeenDelay int `yaml:"never_seen_delay"`
	// HotFrequency: frequency strictly above it marks a row hot.
	HotFrequency int `yaml:"hot_frequency"`
	// ColdDelay: delay strictly above it marks a non-hot row cold.
	ColdDelay int `yaml:"cold_delay"`
}

// DefaultThresholds returns the thresholds used by the dashboard.
func DefaultThresholds() Thresholds {
	return Thresholds{NeverSeenDelay: 999, HotFrequency: 10, ColdDelay: 20}
}

func (t *Thresholds) defaults() {
	d := DefaultThresholds()
	if *t == (Thresholds{}) {
		*t = d
		return
	}
	if t.NeverSeenDelay < 0 {
		t.NeverSeenDelay = d.NeverSeenDelay
	}
	if t.HotFrequency < 0 {
		t.HotFrequency = d.HotFrequency
	}
	if t.ColdDelay < 0 {
		t.ColdDelay = d.ColdDelay
	}
}

// HeatmapRow summarises one number over the whole history.
type HeatmapRow struct {
	Number     int    `json:"number"`
	Frequency  int    `json:"frequency"`
	LastDrawID int    `json:"last_draw_id"`
	LastDate   string `json:"last_date"`
	Delay      int    `json:"delay"`
	Status     Status `json:"status"`
}

// Heatmap returns one row per number 0–45, in numeric order. Delay is the
// distance from the highest draw id of the history to the number's last
// appearance.
func Heatmap(records []draw.Record, th Thresholds) []HeatmapRow {
	if len(records) == 0 {
		return nil
	}
	th.defaults()

	var freq [numbers]int
	maxID := 0
	for _, r := range records {
		if r.DrawID > maxID {
			maxID = r.DrawID
		}
		for _, n := range r.Numbers {
			if inRange(n) {
				freq[n]++
			}
		}
	}
	last := lastSeen(records)

	rows := make([]HeatmapRow, numbers)
	for n := range rows {
		row := HeatmapRow{
			Number:     n,
			Frequency:  freq[n],
			LastDrawID: NeverDrawID,
			LastDate:   NeverDate,
			Delay:      th.NeverSeenDelay,
		}
		if last[n].drawID > 0 {
			row.LastDrawID = last[n].drawID
			row.LastDate = last[n].date
			row.Delay = maxID - last[n].drawID
		}
		row.Status = th.classify(row)
		rows[n] = row
	}
	return rows
}

func (t Thresholds) classify(row HeatmapRow) Status {
	switch {
	case row.Frequency > t.HotFrequency:
		return StatusHot
	case row.Delay > t.ColdDelay:
		return StatusCold
	default:
		return StatusNormal
	}
}
