package calculator

import (
	"fmt"
	"sort"
	"time"

	"PortfolioLens/internal/model"
)

// Align merges raw series onto the union of their trading dates within [from, to],
// forward-filling each ticker across dates it did not trade. A zero from or to leaves
// that side open. Tickers without any observation in range are dropped. Index dates
// before a retained ticker's first observation are trimmed, since filling them would
// need a later price.
func Align(raw map[string]model.PriceSeries, from, to time.Time) (model.AlignedSet, error) {
	tickers := make([]string, 0, len(raw))
	for t := range raw {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	lo, hi := model.Day(from), model.Day(to)
	inRange := func(d time.Time) bool {
		if !from.IsZero() && d.Before(lo) {
			return false
		}
		if !to.IsZero() && d.After(hi) {
			return false
		}
		return true
	}

	set := model.AlignedSet{Values: make(map[string][]float64)}
	kept := make(map[string][]model.PricePoint)
	dates := make(map[int64]time.Time)
	var start time.Time
	for _, t := range tickers {
		var pts []model.PricePoint
		for _, p := range raw[t].Points {
			if inRange(p.Date) {
				pts = append(pts, p)
			}
		}
		if len(pts) == 0 {
			set.Dropped = append(set.Dropped, t)
			continue
		}
		kept[t] = pts
		for _, p := range pts {
			dates[p.Date.Unix()] = p.Date
		}
		if pts[0].Date.After(start) {
			start = pts[0].Date
		}
	}
	if len(kept) == 0 {
		return set, fmt.Errorf("no ticker has data in range: %w", ErrAlignmentEmpty)
	}

	for _, d := range dates {
		if !d.Before(start) {
			set.Index = append(set.Index, d)
		}
	}
	sort.Slice(set.Index, func(i, j int) bool { return set.Index[i].Before(set.Index[j]) })

	for t, pts := range kept {
		vals := make([]float64, len(set.Index))
		j := 0
		last := 0.0
		for i, d := range set.Index {
			for j < len(pts) && !pts[j].Date.After(d) {
				last = pts[j].Close
				j++
			}
			vals[i] = last
		}
		set.Values[t] = vals
	}
	return set, nil
}
