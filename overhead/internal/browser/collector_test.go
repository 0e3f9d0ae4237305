package browser

import (
	"context"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/hazyhaar/extbench/metrics"
)

func headers(kv map[string]string) proto.NetworkHeaders {
	h := make(proto.NetworkHeaders, len(kv))
	for k, v := range kv {
		h[k] = gson.New(v)
	}
	return h
}

func TestCollectorCountsAndSizes(t *testing.T) {
	result := metrics.NewQueryResult()
	c := NewCollector(result)

	c.HandleRequest(&proto.NetworkRequestWillBeSent{
		Request: &proto.NetworkRequest{Headers: headers(map[string]string{"Content-Length": "120"})},
	})
	c.HandleRequest(&proto.NetworkRequestWillBeSent{
		Request: &proto.NetworkRequest{Headers: headers(nil)},
	})
	c.HandleResponse(&proto.NetworkResponseReceived{
		Type:     proto.NetworkResourceTypeDocument,
		Response: &proto.NetworkResponse{Status: 200, Headers: headers(map[string]string{"content-length": "5000"})},
	})
	c.HandleResponse(&proto.NetworkResponseReceived{
		Type:     proto.NetworkResourceTypeImage,
		Response: &proto.NetworkResponse{Status: 200, Headers: headers(map[string]string{"Content-Length": "300"})},
	})

	if result.RequestCount != 2 {
		t.Errorf("RequestCount: got %d, want 2", result.RequestCount)
	}
	if result.AccumulatedRequestBodySize != 120 {
		t.Errorf("AccumulatedRequestBodySize: got %d, want 120", result.AccumulatedRequestBodySize)
	}
	if result.ResponseCount != 2 {
		t.Errorf("ResponseCount: got %d, want 2", result.ResponseCount)
	}
	if result.AccumulatedResponseBodySize != 5300 {
		t.Errorf("AccumulatedResponseBodySize: got %d, want 5300", result.AccumulatedResponseBodySize)
	}
}

func TestCollectorMainStatusIsFirstDocumentResponse(t *testing.T) {
	c := NewCollector(metrics.NewQueryResult())

	c.HandleResponse(&proto.NetworkResponseReceived{
		Type:     proto.NetworkResourceTypeImage,
		Response: &proto.NetworkResponse{Status: 200, Headers: headers(nil)},
	})
	if c.MainStatus() != 0 {
		t.Fatalf("MainStatus before document response: got %d, want 0", c.MainStatus())
	}

	c.HandleResponse(&proto.NetworkResponseReceived{
		Type:     proto.NetworkResourceTypeDocument,
		Response: &proto.NetworkResponse{Status: 503, Headers: headers(nil)},
	})
	c.HandleResponse(&proto.NetworkResponseReceived{
		Type:     proto.NetworkResourceTypeDocument,
		Response: &proto.NetworkResponse{Status: 200, Headers: headers(nil)},
	})

	if c.MainStatus() != 503 {
		t.Fatalf("MainStatus: got %d, want 503 (first document response wins)", c.MainStatus())
	}
}

func TestPumpDetachJoins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// The write below happens inside the pump goroutine after cancellation,
	// mimicking a handler draining its last event. Detach must not return
	// before it is visible.
	drained := false
	detach := pump(cancel, func() {
		<-ctx.Done()
		drained = true
	})

	detach()
	if !drained {
		t.Fatal("detach returned before the pump exited")
	}
}

func TestContentLength(t *testing.T) {
	cases := []struct {
		name    string
		headers proto.NetworkHeaders
		want    int64
		wantOK  bool
	}{
		{"lowercase", headers(map[string]string{"content-length": "42"}), 42, true},
		{"mixed case", headers(map[string]string{"Content-Length": "7"}), 7, true},
		{"absent", headers(map[string]string{"content-type": "text/html"}), 0, false},
		{"unparsable", headers(map[string]string{"content-length": "chunked"}), 0, false},
		{"padded", headers(map[string]string{"content-length": " 13 "}), 13, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := contentLength(tc.headers)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("contentLength: got (%d, %v), want (%d, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestFirstEntryField(t *testing.T) {
	nav := []byte(`[{"name":"https://a.example/","entryType":"navigation","duration":812.4},
		{"name":"ignored","duration":99}]`)

	v, ok, err := firstEntryField(nav, "duration")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 812.4 {
		t.Fatalf("duration: got (%v, %v), want (812.4, true)", v, ok)
	}

	// Empty category: no value, no error.
	if _, ok, err := firstEntryField([]byte(`[]`), "duration"); err != nil || ok {
		t.Fatalf("empty category: got (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	// Field absent on the first entry — later entries must not be consulted.
	data := []byte(`[{"name":"x"},{"startTime":120.0}]`)
	if _, ok, err := firstEntryField(data, "startTime"); err != nil || ok {
		t.Fatalf("absent field: got (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	// Non-numeric field value is not stored.
	if _, ok, err := firstEntryField([]byte(`[{"duration":"fast"}]`), "duration"); err != nil || ok {
		t.Fatalf("non-numeric: got (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	if _, _, err := firstEntryField([]byte(`{`), "duration"); err == nil {
		t.Fatal("malformed JSON: expected error")
	}
}
