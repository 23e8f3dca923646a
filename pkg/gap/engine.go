// Package gap computes actual-vs-expected performance aggregates: a
// week x dimension-value matrix of gap cells, per-entity rollups, and a
// portfolio summary. It is a pure function of its inputs - no I/O, no
// hidden state - so identical inputs always produce identical output.
package gap

import (
	"sort"
	"time"
)

// Row is one normalized metric observation.
type Row struct {
	Date           time.Time
	DimensionField string
	DimensionValue string
	Actual         float64
	Expected       *float64
}

// Request scopes a computation to a week range and, optionally, a subset of
// dimension fields. Zero From/To means unbounded on that side; empty
// Dimensions means every field present in the rows.
type Request struct {
	From       time.Time
	To         time.Time
	Dimensions []string
}

// Cell is one (dimensionValue, week) aggregate. Expected is nil only when
// every row in the group lacked an expected value; rows missing expected
// contribute 0 to an otherwise numeric expected sum (product policy, see
// design notes). Gap is never clamped: negative means ahead of target.
type Cell struct {
	Actual   float64  `json:"actual"`
	Expected *float64 `json:"expected"`
	Gap      float64  `json:"gap"`
	Pct      *float64 `json:"pct"`
}

// TrendPoint is one week's gap for an entity, ordered ascending by week.
// Weeks with no data for the entity are absent, so a trend aligns with the
// matrix week axis by its Week keys, not by index.
type TrendPoint struct {
	Week string  `json:"week"`
	Gap  float64 `json:"gap"`
}

// EntitySummary is the all-weeks rollup for one dimension value.
// AvgGapPct is the mean of the non-null weekly gap percentages; it is nil
// when no week had a positive expected total.
type EntitySummary struct {
	Field         string       `json:"field"`
	Value         string       `json:"value"`
	TotalActual   float64      `json:"total_actual"`
	TotalExpected float64      `json:"total_expected"`
	TotalGap      float64      `json:"total_gap"`
	WeekCount     int          `json:"week_count"`
	AvgGapPct     *float64     `json:"avg_gap_pct"`
	Trend         []TrendPoint `json:"trend"`
}

// DimensionValues lists the values observed for one dimension field, in
// first-encountered row order.
type DimensionValues struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// Summary is the portfolio-level rollup. TotalLeakage sums only positive
// gaps: over-performance never offsets the leakage number.
type Summary struct {
	TotalLeakage   float64 `json:"total_leakage"`
	DimensionCount int     `json:"dimension_count"`
	EntityCount    int     `json:"entity_count"`
	WeekCount      int     `json:"week_count"`
	BestPerformer  string  `json:"best_performer"`
	WorstPerformer string  `json:"worst_performer"`
}

// Result is the full engine output consumed by the heatmap, leaderboard, and
// drill-down views. Matrix is keyed field -> value -> ISO week -> cell; a
// value missing a week simply has no cell there, which renders as "no data"
// rather than a zero gap.
type Result struct {
	Weeks      []string                               `json:"weeks"`
	Dimensions []DimensionValues                      `json:"dimensions"`
	Matrix     map[string]map[string]map[string]*Cell `json:"matrix"`
	Entities   []EntitySummary                        `json:"entities"`
	Summary    Summary                                `json:"summary"`
}

// WeekStart truncates a date to its Monday week boundary in UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

const weekLayout = "2006-01-02"

// cellAccum accumulates one (field, value, week) group before deriving the cell.
type cellAccum struct {
	actual      float64
	expected    float64
	hasExpected bool
}

// Compute aggregates rows into the matrix, entity rollups, and portfolio
// summary described above.
func Compute(rows []Row, req Request) *Result {
	requested := map[string]bool{}
	for _, d := range req.Dimensions {
		requested[d] = true
	}

	// First-encounter orderings keep the output deterministic for a given
	// input row order.
	var fieldOrder []string
	valueOrder := map[string][]string{}
	weekSet := map[string]bool{}
	accum := map[string]map[string]map[string]*cellAccum{}

	for _, row := range rows {
		if len(requested) > 0 && !requested[row.DimensionField] {
			continue
		}
		if !req.From.IsZero() && row.Date.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && row.Date.After(req.To) {
			continue
		}

		week := WeekStart(row.Date).Format(weekLayout)
		weekSet[week] = true

		field := row.DimensionField
		byValue, ok := accum[field]
		if !ok {
			byValue = map[string]map[string]*cellAccum{}
			accum[field] = byValue
			fieldOrder = append(fieldOrder, field)
		}

		byWeek, ok := byValue[row.DimensionValue]
		if !ok {
			byWeek = map[string]*cellAccum{}
			byValue[row.DimensionValue] = byWeek
			valueOrder[field] = append(valueOrder[field], row.DimensionValue)
		}

		cell, ok := byWeek[week]
		if !ok {
			cell = &cellAccum{}
			byWeek[week] = cell
		}

		cell.actual += row.Actual
		if row.Expected != nil {
			cell.expected += *row.Expected
			cell.hasExpected = true
		}
	}

	weeks := make([]string, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.Strings(weeks)

	result := &Result{
		Weeks:  weeks,
		Matrix: map[string]map[string]map[string]*Cell{},
	}

	for _, field := range fieldOrder {
		result.Dimensions = append(result.Dimensions, DimensionValues{
			Field:  field,
			Values: valueOrder[field],
		})

		valueCells := map[string]map[string]*Cell{}
		result.Matrix[field] = valueCells

		for _, value := range valueOrder[field] {
			weekCells := map[string]*Cell{}
			valueCells[value] = weekCells

			summary := EntitySummary{Field: field, Value: value}
			var pctSum float64
			var pctCount int

			for _, week := range weeks {
				acc, ok := accum[field][value][week]
				if !ok {
					continue // no data for this week, distinct from a zero cell
				}

				cell := deriveCell(acc)
				weekCells[week] = cell

				summary.TotalActual += cell.Actual
				if cell.Expected != nil {
					summary.TotalExpected += *cell.Expected
				}
				summary.TotalGap += cell.Gap
				summary.WeekCount++
				summary.Trend = append(summary.Trend, TrendPoint{Week: week, Gap: cell.Gap})

				if cell.Pct != nil {
					pctSum += *cell.Pct
					pctCount++
				}

				if cell.Gap > 0 {
					result.Summary.TotalLeakage += cell.Gap
				}
			}

			if pctCount > 0 {
				avg := pctSum / float64(pctCount)
				summary.AvgGapPct = &avg
			}

			result.Entities = append(result.Entities, summary)
		}
	}

	result.Summary.DimensionCount = len(fieldOrder)
	result.Summary.EntityCount = len(result.Entities)
	result.Summary.WeekCount = len(weeks)

	// Strict comparisons break ties in favor of the first-encountered entity.
	best, worst := -1, -1
	for i, e := range result.Entities {
		if best == -1 || e.TotalGap < result.Entities[best].TotalGap {
			best = i
		}
		if worst == -1 || e.TotalGap > result.Entities[worst].TotalGap {
			worst = i
		}
	}
	if best >= 0 {
		result.Summary.BestPerformer = result.Entities[best].Value
		result.Summary.WorstPerformer = result.Entities[worst].Value
	}

	return result
}

// deriveCell turns an accumulator into a presentation cell.
// Gap is 0 when expected is entirely missing; Pct is nil unless expected > 0.
func deriveCell(acc *cellAccum) *Cell {
	cell := &Cell{Actual: acc.actual}

	if acc.hasExpected {
		expected := acc.expected
		cell.Expected = &expected
		cell.Gap = expected - acc.actual
		if expected > 0 {
			pct := cell.Gap / expected * 100
			cell.Pct = &pct
		}
	}

	return cell
}
