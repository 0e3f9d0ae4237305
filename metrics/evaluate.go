package metrics

import "log/slog"

// Evaluate flattens raw query results into metric records, applying the
// error-filtering policy: a domain is dropped entirely when its result
// carries an error message other than the timeout marker. HTTP-status errors
// and timeouts are still evaluated with whatever partial metrics were
// captured before the failure.
//
// Counters are always present in the output record (they are always
// initialised); timing fields only when they were actually observed.
// Evaluate never mutates its input, so evaluating twice yields the same set.
func Evaluate(raw *RawResults, log *slog.Logger) Set {
	if log == nil {
		log = slog.Default()
	}

	out := make(Set, raw.Len())
	raw.Each(func(domain string, r *QueryResult) {
		if r.Error != nil && r.Error.Message != "" && r.Error.Message != TimeoutMarker {
			log.Error("metrics: dropping domain with transport error",
				"domain", domain, "error", r.Error.Message)
			return
		}

		rec := Record{
			MetricRequestCount:     float64(r.RequestCount),
			MetricResponseCount:    float64(r.ResponseCount),
			MetricRequestBodySize:  float64(r.AccumulatedRequestBodySize),
			MetricResponseBodySize: float64(r.AccumulatedResponseBodySize),
		}
		if r.NavigationDuration != nil {
			rec[MetricNavigationDuration] = *r.NavigationDuration
		}
		if r.ResourceDuration != nil {
			rec[MetricResourceDuration] = *r.ResourceDuration
		}
		if r.FirstContentfulPaint != nil {
			rec[MetricFirstContentfulPaint] = *r.FirstContentfulPaint
		}

		out[domain] = rec
	})

	return out
}
