package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/extbench/metrics"
)

// Collector accumulates the network events and page timings of exactly one
// page load into a QueryResult. Its handlers must be subscribed before
// navigation starts or early requests are lost.
type Collector struct {
	result     *metrics.QueryResult
	mainStatus int // status of the first document response; 0 = none seen
}

// NewCollector wraps a QueryResult for one page-load lifetime.
func NewCollector(result *metrics.QueryResult) *Collector {
	return &Collector{result: result}
}

// Attach subscribes the network handlers on the page and pumps events in the
// background. The page must not have navigated yet: EachEvent subscribes
// synchronously here, only the pump runs in the background, so no early
// request can slip past.
//
// The returned detach stops the pump and blocks until it has exited. Callers
// must detach before reading anything the handlers write.
func (c *Collector) Attach(page *rod.Page) (detach func()) {
	ctx, cancel := context.WithCancel(page.GetContext())
	wait := page.Context(ctx).EachEvent(c.HandleRequest, c.HandleResponse)
	return pump(cancel, wait)
}

// pump runs wait in a goroutine and returns a function that cancels the event
// context and joins the goroutine, so handler writes happen before the caller
// resumes.
func pump(cancel context.CancelFunc, wait func()) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()
	return func() {
		cancel()
		<-done
	}
}

// HandleRequest records one outbound request. A missing or unparsable
// content-length header is skipped silently; the count still increments.
func (c *Collector) HandleRequest(e *proto.NetworkRequestWillBeSent) {
	n, ok := contentLength(e.Request.Headers)
	c.result.AddRequest(n, ok)
}

// HandleResponse records one inbound response and remembers the status of
// the first document response, which is the main navigation's HTTP status.
func (c *Collector) HandleResponse(e *proto.NetworkResponseReceived) {
	n, ok := contentLength(e.Response.Headers)
	c.result.AddResponse(n, ok)

	if c.mainStatus == 0 && e.Type == proto.NetworkResourceTypeDocument {
		c.mainStatus = e.Response.Status
	}
}

// MainStatus returns the HTTP status of the main document response, or 0 if
// no document response was observed.
func (c *Collector) MainStatus() int { return c.mainStatus }

// CollectTimings reads the navigation, resource and paint performance
// categories once each, after the page reached the load state. Only the
// first entry of each category is sampled; later entries are ignored, so
// resource timing is under-sampled on pages with many resources.
func (c *Collector) CollectTimings(page *rod.Page) error {
	if v, ok, err := c.entryField(page, "navigation", "duration"); err != nil {
		return err
	} else if ok {
		c.result.NavigationDuration = &v
	}

	if v, ok, err := c.entryField(page, "resource", "duration"); err != nil {
		return err
	} else if ok {
		c.result.ResourceDuration = &v
	}

	if v, ok, err := c.entryField(page, "paint", "startTime"); err != nil {
		return err
	} else if ok {
		c.result.FirstContentfulPaint = &v
	}

	return nil
}

func (c *Collector) entryField(page *rod.Page, entryType, field string) (float64, bool, error) {
	// PerformanceEntry serialises through its toJSON, so stringify in the
	// page and parse here, like the profiler scripts do.
	res, err := page.Eval(fmt.Sprintf(
		`() => JSON.stringify(performance.getEntriesByType(%q))`, entryType))
	if err != nil {
		return 0, false, fmt.Errorf("browser: read %s timing: %w", entryType, err)
	}
	return firstEntryField([]byte(res.Value.Str()), field)
}

// firstEntryField extracts a numeric field from the first entry of a
// serialised performance-entry array. Absent categories, absent fields and
// non-numeric values all report ok=false.
func firstEntryField(data []byte, field string) (float64, bool, error) {
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, false, fmt.Errorf("browser: parse timing entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, false, nil
	}
	v, ok := entries[0][field]
	if !ok {
		return 0, false, nil
	}
	n, ok := v.(float64)
	return n, ok, nil
}

// contentLength finds and parses the content-length header. CDP preserves
// the original header casing, so the lookup is case-insensitive.
func contentLength(headers proto.NetworkHeaders) (int64, bool) {
	for name, v := range headers {
		if !strings.EqualFold(name, "content-length") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
