// Package stats summarises persisted measurement files: per-domain diffs
// between the with-extension and baseline sets, and per-metric aggregate
// statistics (mean/median of baseline and of the differences, mean diff as a
// percentage of the baseline mean).
//
// The per-domain diffs are recomputed with the same correlation the crawl
// pipeline uses, so both tools always agree on shared domains.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hazyhaar/extbench/metrics"
)

// metricDisplay controls how one metric is rendered.
type metricDisplay struct {
	name  string
	label string
	scale float64 // divisor applied before printing
	unit  string  // printed suffix
}

var displays = []metricDisplay{
	{metrics.MetricRequestCount, "Request Count", 1, ""},
	{metrics.MetricResponseCount, "Response Count", 1, ""},
	{metrics.MetricRequestBodySize, "Request Body Size", 1000, " KB"},
	{metrics.MetricResponseBodySize, "Response Body Size", 1000, " KB"},
	{metrics.MetricNavigationDuration, "Navigation Duration", 1, " ms"},
	{metrics.MetricResourceDuration, "Resource Duration", 1, " ms"},
	{metrics.MetricFirstContentfulPaint, "First Contentful Paint (FCP)", 1, " ms"},
}

// Summary aggregates one metric over the domains where it was measured on
// both sides.
type Summary struct {
	Metric         string
	Domains        int
	BaselineMean   float64
	BaselineMedian float64
	DiffMean       float64
	DiffMedian     float64
}

// OverheadPct is the mean difference as a percentage of the mean baseline.
// ok is false when the baseline mean is zero.
func (s Summary) OverheadPct() (pct float64, ok bool) {
	if s.BaselineMean == 0 {
		return 0, false
	}
	return s.DiffMean / s.BaselineMean * 100, true
}

// Summarize computes a Summary for each metric in the fixed report list,
// over the domain subset where the metric appears in both the diff and the
// baseline record. Metrics absent from every domain are skipped entirely.
func Summarize(baseline, diffs metrics.Set) []Summary {
	var out []Summary
	for _, name := range metrics.Names {
		var base, diff []float64
		for domain, rec := range diffs {
			d, ok := rec[name]
			if !ok {
				continue
			}
			b, ok := baseline[domain][name]
			if !ok {
				continue
			}
			diff = append(diff, d)
			base = append(base, b)
		}
		if len(diff) == 0 {
			continue
		}
		out = append(out, Summary{
			Metric:         name,
			Domains:        len(diff),
			BaselineMean:   mean(base),
			BaselineMedian: median(base),
			DiffMean:       mean(diff),
			DiffMedian:     median(diff),
		})
	}
	return out
}

// Run loads the two persisted metric files and writes the full report.
func Run(withPath, basePath string, w io.Writer) error {
	withSet, err := metrics.ReadFile(withPath)
	if err != nil {
		return err
	}
	baseSet, err := metrics.ReadFile(basePath)
	if err != nil {
		return err
	}

	diffs := metrics.Correlate(withSet, baseSet)
	render(w, withSet, baseSet, diffs)
	return nil
}

func render(w io.Writer, withSet, baseSet, diffs metrics.Set) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Per-Domain Differences (with extension - without extension)")
	fmt.Fprintln(w, rule)

	domains := diffs.Domains()
	sort.Strings(domains)
	for _, domain := range domains {
		fmt.Fprintln(w, domain)
		rec := diffs[domain]
		for _, d := range displays {
			if v, ok := rec[d.name]; ok {
				fmt.Fprintf(w, "    %s: %+.2f%s\n", d.name, v/d.scale, d.unit)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "Summary Statistics")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nTotal Domains Compared: %d\n", len(diffs))
	fmt.Fprintf(w, "Skipped (only in one dataset): %d\n", skipped(withSet, baseSet))

	for _, s := range Summarize(baseSet, diffs) {
		d := displayFor(s.Metric)
		fmt.Fprintf(w, "\n--- %s ---\n", d.label)
		fmt.Fprintf(w, "Average (baseline): %.2f%s\n", s.BaselineMean/d.scale, d.unit)
		if pct, ok := s.OverheadPct(); ok {
			fmt.Fprintf(w, "Average Diff: %.2f%s (%.2f%% overhead)\n", s.DiffMean/d.scale, d.unit, pct)
		} else {
			fmt.Fprintf(w, "Average Diff: %.2f%s\n", s.DiffMean/d.scale, d.unit)
		}
		fmt.Fprintf(w, "Median (baseline): %.2f%s\n", s.BaselineMedian/d.scale, d.unit)
		fmt.Fprintf(w, "Median Diff: %.2f%s\n", s.DiffMedian/d.scale, d.unit)
	}
}

func displayFor(name string) metricDisplay {
	for _, d := range displays {
		if d.name == name {
			return d
		}
	}
	return metricDisplay{name: name, label: name, scale: 1}
}

// skipped counts with-extension domains that have no baseline record. The
// diff listing is keyed on the with-extension set, so baseline-only domains
// never appear there and are not counted as skipped.
func skipped(withSet, baseSet metrics.Set) int {
	n := 0
	for d := range withSet {
		if _, ok := baseSet[d]; !ok {
			n++
		}
	}
	return n
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// median sorts a copy; even-length inputs average the two middle values.
func median(xs []float64) float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)

	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
