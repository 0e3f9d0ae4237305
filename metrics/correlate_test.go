package metrics

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestCorrelateDifferences(t *testing.T) {
	withExt := Set{
		"https://a.example": {MetricRequestCount: 12, MetricResponseBodySize: 5300},
	}
	baseline := Set{
		"https://a.example": {MetricRequestCount: 10, MetricResponseBodySize: 5000},
	}

	got := Correlate(withExt, baseline)
	want := Set{
		"https://a.example": {MetricRequestCount: 2, MetricResponseBodySize: 300},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("correlate:\ngot  %v\nwant %v", got, want)
	}
}

func TestCorrelateDomainIntersection(t *testing.T) {
	withExt := Set{
		"https://both.example":     {MetricRequestCount: 5},
		"https://withonly.example": {MetricRequestCount: 7},
	}
	baseline := Set{
		"https://both.example":     {MetricRequestCount: 3},
		"https://baseonly.example": {MetricRequestCount: 9},
	}

	got := Correlate(withExt, baseline)
	if len(got) != 1 {
		t.Fatalf("got %d domains, want 1", len(got))
	}
	if _, ok := got["https://both.example"]; !ok {
		t.Fatal("common domain missing from correlated set")
	}
}

func TestCorrelateMetricIntersection(t *testing.T) {
	// fcp observed only with the extension: it must not appear in the diff.
	withExt := Set{
		"https://a.example": {MetricRequestCount: 4, MetricFirstContentfulPaint: 120},
	}
	baseline := Set{
		"https://a.example": {MetricRequestCount: 4},
	}

	got := Correlate(withExt, baseline)
	rec := got["https://a.example"]
	if _, ok := rec[MetricFirstContentfulPaint]; ok {
		t.Error("one-sided fcp must be excluded, not zero-filled")
	}
	if rec[MetricRequestCount] != 0 {
		t.Errorf("requestCount diff: got %v, want 0", rec[MetricRequestCount])
	}
}

func TestCorrelateAntiSymmetric(t *testing.T) {
	a := Set{
		"https://x.example": {MetricRequestCount: 12, MetricNavigationDuration: 900.5},
		"https://y.example": {MetricRequestCount: 3},
	}
	b := Set{
		"https://x.example": {MetricRequestCount: 10, MetricNavigationDuration: 850.25},
		"https://y.example": {MetricRequestCount: 8},
	}

	ab := Correlate(a, b)
	ba := Correlate(b, a)

	for domain, rec := range ab {
		for name, v := range rec {
			if got := ba[domain][name]; got != -v {
				t.Errorf("%s/%s: correlate(b,a)=%v, want %v", domain, name, got, -v)
			}
		}
	}
	if len(ab) != len(ba) {
		t.Errorf("domain counts differ: %d vs %d", len(ab), len(ba))
	}
}

func TestCorrelateDroppedDomainAbsentRegardlessOfBaseline(t *testing.T) {
	// A domain that failed with a transport error in the with-extension run
	// never reaches correlation, even if the baseline measured it fine.
	raw := NewRawResults()
	bad := NewQueryResult()
	bad.SetException("net::ERR_CONNECTION_REFUSED")
	raw.Add("https://flaky.example", bad)

	withExt := Evaluate(raw, nil)
	baseline := Set{"https://flaky.example": {MetricRequestCount: 10}}

	got := Correlate(withExt, baseline)
	if len(got) != 0 {
		t.Fatalf("got %d correlated domains, want 0", len(got))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	set := Set{
		"https://a.example": {MetricRequestCount: 12, MetricFirstContentfulPaint: 120.5},
	}
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteFile(path, set); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, set) {
		t.Fatalf("round trip:\ngot  %v\nwant %v", got, set)
	}
}
