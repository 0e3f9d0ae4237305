package metrics

// Correlate computes per-domain, per-metric differences between two record
// sets: withExt minus baseline. Only domains present in both sets and, for
// each such domain, only metric names present in both records contribute.
// Asymmetric observability (a timing captured in one run but not the other)
// is silently excluded rather than zero-filled, so it can never manufacture
// a spurious metric.
func Correlate(withExt, baseline Set) Set {
	out := make(Set)
	for domain, withRec := range withExt {
		baseRec, ok := baseline[domain]
		if !ok {
			continue
		}
		diff := make(Record)
		for name, wv := range withRec {
			if bv, ok := baseRec[name]; ok {
				diff[name] = wv - bv
			}
		}
		out[domain] = diff
	}
	return out
}
