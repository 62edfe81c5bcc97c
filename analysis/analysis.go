// Package analysis derives descriptive statistics from the draw history of
// one modality: hot numbers, cold numbers, a per-number heatmap, and a
// heuristic six-number prediction.
//
// Every function takes the full record set for a single modality in any
// order and computes its result from scratch. An empty history yields an
// empty result.
package analysis

import (
	"sort"

	"github.com/hazyhaar/quinimind/draw"
)

// Defaults for window and list sizes.
const (
	DefaultHotWindow = 50
	DefaultTopCount  = 10
)

// Heatmap sentinels for numbers that never appeared.
const (
	NeverDrawID = -1
	NeverDate   = "Nunca"
)

// Config holds the tunables of the analyzer.
type Config struct {
	HotWindow  int        `yaml:"hot_window"`
	HotCount   int        `yaml:"hot_count"`
	ColdCount  int        `yaml:"cold_count"`
	Thresholds Thresholds `yaml:",inline"`
}

// Defaults fills zero values.
func (c *Config) Defaults() {
	if c.HotWindow <= 0 {
		c.HotWindow = DefaultHotWindow
	}
	if c.HotCount <= 0 {
		c.HotCount = DefaultTopCount
	}
	if c.ColdCount <= 0 {
		c.ColdCount = DefaultTopCount
	}
	c.Thresholds.defaults()
}

const numbers = draw.MaxNumber + 1

func inRange(n int) bool { return n >= draw.MinNumber && n <= draw.MaxNumber }

// HotNumbers returns the limit most frequent numbers across the lastN
// records with the highest draw ids. Ties go to the lower number.
func HotNumbers(records []draw.Record, lastN, limit int) []int {
	if len(records) == 0 {
		return nil
	}
	if lastN <= 0 {
		lastN = DefaultHotWindow
	}
	if limit <= 0 {
		limit = DefaultTopCount
	}

	recent := make([]draw.Record, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].DrawID > recent[j].DrawID })
	if len(recent) > lastN {
		recent = recent[:lastN]
	}

	var freq [numbers]int
	for _, r := range recent {
		for _, n := range r.Numbers {
			if inRange(n) {
				freq[n]++
			}
		}
	}

	var hot []int
	for n := range freq {
		if freq[n] > 0 {
			hot = append(hot, n)
		}
	}
	sort.SliceStable(hot, func(i, j int) bool { return freq[hot[i]] > freq[hot[j]] })
	if len(hot) > limit {
		hot = hot[:limit]
	}
	return hot
}

// ColdNumbers ranks numbers by how long ago they last appeared across the
// whole history. Numbers never drawn come first in ascending order, then the
// rest by ascending last-seen draw id (ties to the lower number). The first
// limit entries are returned.
func ColdNumbers(records []draw.Record, limit int) []int {
	if len(records) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultTopCount
	}

	last := lastSeen(records)

	var never, seen []int
	for n := 0; n < numbers; n++ {
		if last[n].drawID == 0 {
			never = append(never, n)
		} else {
			seen = append(seen, n)
		}
	}
	sort.SliceStable(seen, func(i, j int) bool { return last[seen[i]].drawID < last[seen[j]].drawID })

	cold := append(never, seen...)
	if len(cold) > limit {
		cold = cold[:limit]
	}
	return cold
}

type appearance struct {
	drawID int
	date   string
}

// lastSeen returns, per number, the highest draw id at which it appeared.
// Zero means never; valid draw ids are positive.
func lastSeen(records []draw.Record) [numbers]appearance {
	var last [numbers]appearance
	for _, r := range records {
		for _, n := range r.Numbers {
			if inRange(n) && r.DrawID > last[n].drawID {
				last[n] = appearance{drawID: r.DrawID, date: r.Date}
			}
		}
	}
	return last
}
