// Package metrics holds the measurement data model shared by the crawl
// pipeline and the statistics tool: raw per-domain query results, the
// evaluated flat metric records, and the correlation between two record
// sets.
//
// Raw results keep everything that happened during a query, including
// failures. Evaluation flattens them into name→value records under the
// error-filtering policy; correlation subtracts a baseline record set from
// a with-extension record set, domain by domain.
package metrics

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Metric names used in records and persisted files.
const (
	MetricRequestCount         = "requestCount"
	MetricResponseCount        = "responseCount"
	MetricRequestBodySize      = "accumulatedRequestBodySize"
	MetricResponseBodySize     = "accumulatedResponseBodySize"
	MetricNavigationDuration   = "navigationDuration"
	MetricResourceDuration     = "resourceDuration"
	MetricFirstContentfulPaint = "fcp"
)

// Names lists every metric a record can carry, in report order.
var Names = []string{
	MetricRequestCount,
	MetricResponseCount,
	MetricRequestBodySize,
	MetricResponseBodySize,
	MetricNavigationDuration,
	MetricResourceDuration,
	MetricFirstContentfulPaint,
}

// TimeoutMarker is the error message recorded when a navigation exceeds its
// deadline. The evaluator treats timeouts as retainable: whatever was
// captured before the deadline still counts.
const TimeoutMarker = "timeout"

// QueryError is attached to a QueryResult when something went wrong during
// the query. Code is set for navigable-but-erroring responses (HTTP status),
// Message for transport faults and timeouts. Either may be absent.
type QueryError struct {
	Code    *int
	Message string
}

// QueryResult accumulates the measurements of one page load. Counters only
// ever increase; timing fields are set at most once, and only when the
// corresponding performance entry existed.
type QueryResult struct {
	RequestCount                int
	AccumulatedRequestBodySize  int64
	ResponseCount               int
	AccumulatedResponseBodySize int64

	NavigationDuration   *float64
	ResourceDuration     *float64
	FirstContentfulPaint *float64

	Error *QueryError
}

// NewQueryResult returns a result with all counters zero and all optional
// fields absent.
func NewQueryResult() *QueryResult {
	return &QueryResult{}
}

// AddRequest records one outbound request. bodySize is the parsed
// content-length header; hasSize is false when the header was absent, which
// is not an error — the count still increments.
func (r *QueryResult) AddRequest(bodySize int64, hasSize bool) {
	r.RequestCount++
	if hasSize {
		r.AccumulatedRequestBodySize += bodySize
	}
}

// AddResponse records one inbound response, symmetric to AddRequest.
func (r *QueryResult) AddResponse(bodySize int64, hasSize bool) {
	r.ResponseCount++
	if hasSize {
		r.AccumulatedResponseBodySize += bodySize
	}
}

// SetHTTPError records a failing HTTP status on the lazily created error.
func (r *QueryResult) SetHTTPError(code int) {
	r.err().Code = &code
}

// SetException records a transport-level failure or timeout message on the
// lazily created error.
func (r *QueryResult) SetException(msg string) {
	r.err().Message = msg
}

// Failed reports whether any error was recorded.
func (r *QueryResult) Failed() bool { return r.Error != nil }

func (r *QueryResult) err() *QueryError {
	if r.Error == nil {
		r.Error = &QueryError{}
	}
	return r.Error
}

// Record is the evaluated, flattened form of a QueryResult: metric name to
// numeric value, containing only fields that were actually observed.
type Record map[string]float64

// Set maps domain to evaluated (or correlated) record. Insertion order is
// irrelevant; the domain is the join key everywhere.
type Set map[string]Record

// Domains returns the key set in unspecified order.
func (s Set) Domains() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}

// RawResults maps domain to raw QueryResult, preserving visitation order so
// the baseline session can replay exactly the domains the first session
// visited, in the same sequence.
type RawResults struct {
	m *orderedmap.OrderedMap[string, *QueryResult]
}

// NewRawResults returns an empty raw result set.
func NewRawResults() *RawResults {
	return &RawResults{m: orderedmap.NewOrderedMap[string, *QueryResult]()}
}

// Add stores the result for a domain. Re-adding a domain overwrites in place
// without changing its position.
func (s *RawResults) Add(domain string, r *QueryResult) {
	s.m.Set(domain, r)
}

// Get returns the result for a domain.
func (s *RawResults) Get(domain string) (*QueryResult, bool) {
	return s.m.Get(domain)
}

// Len returns the number of domains visited.
func (s *RawResults) Len() int { return s.m.Len() }

// Domains returns the visited domains in visitation order.
func (s *RawResults) Domains() []string {
	out := make([]string, 0, s.m.Len())
	for el := s.m.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// Each calls fn for every (domain, result) pair in visitation order.
func (s *RawResults) Each(fn func(domain string, r *QueryResult)) {
	for el := s.m.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}
