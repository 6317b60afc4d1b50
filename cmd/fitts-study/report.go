package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/lixenwraith/fitts/record"
	"github.com/lixenwraith/fitts/study"
)

type cell struct {
	n      int
	mt     time.Duration
	missed int
}

// report prints mean movement time and miss rate per condition
func report(path string, w io.Writer) error {
	rows, err := record.ReadFile(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no trials")
		return err
	}

	cells := make(map[study.Condition]*cell)
	for _, r := range rows {
		key := r.Condition
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.n++
		c.mt += r.MovementTime
		c.missed += r.MissedClicks
	}

	keys := make([]study.Condition, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b study.Condition) int {
		return cmp.Or(
			cmp.Compare(a.EWRatio, b.EWRatio),
			cmp.Compare(a.TargetSize, b.TargetSize),
			cmp.Compare(a.Amplitude, b.Amplitude),
			compareBool(a.Moving, b.Moving),
		)
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EWW\tW\tA\tMoving\tN\tMeanMT\tMissed/Trial")
	for _, k := range keys {
		c := cells[k]
		fmt.Fprintf(tw, "%g\t%g\t%g\t%v\t%d\t%.3f\t%.2f\n",
			k.EWRatio, k.TargetSize, k.Amplitude, k.Moving, c.n,
			(c.mt / time.Duration(c.n)).Seconds(), float64(c.missed)/float64(c.n))
	}
	fmt.Fprintf(tw, "total\t\t\t\t%d\t\t\n", len(rows))
	return tw.Flush()
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
