// Package data reads underlying price history from local files for the
// volatility estimators.
package data

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// DateLayout is the expected format of the date column.
const DateLayout = "2006-01-02"

// ErrNoBars is returned when a file or window holds no usable rows.
var ErrNoBars = errors.New("no bars")

// Bar is one closing price. Date is zero when the file has no date column.
type Bar struct {
	Date  time.Time
	Close float64
}

type barRow struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}

// LoadBars reads a CSV with a "close" column and an optional "date" column
// (YYYY-MM-DD). Dated bars are returned oldest first; undated files keep
// their row order.
func LoadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	var rows []*barRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoBars, path)
	}

	bars := make([]Bar, 0, len(rows))
	dated := 0
	for i, row := range rows {
		b := Bar{Close: row.Close}
		if s := strings.TrimSpace(row.Date); s != "" {
			d, err := time.Parse(DateLayout, s)
			if err != nil {
				return nil, fmt.Errorf("csv %s line %d: date: %w", path, i+2, err)
			}
			b.Date = d
			dated++
		}
		bars = append(bars, b)
	}

	if dated != 0 && dated != len(bars) {
		return nil, fmt.Errorf("csv %s: %d of %d rows have a date", path, dated, len(bars))
	}
	if dated > 0 {
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	}
	return bars, nil
}

// Between keeps bars dated within [from, to]. A zero bound is open.
// Undated bars are kept as-is.
func Between(bars []Bar, from, to time.Time) ([]Bar, error) {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Date.IsZero() {
			if !from.IsZero() && b.Date.Before(from) {
				continue
			}
			if !to.IsZero() && b.Date.After(to) {
				continue
			}
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w between %s and %s", ErrNoBars, from.Format(DateLayout), to.Format(DateLayout))
	}
	return out, nil
}

// Closes extracts the closing prices.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
