package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/extbench/metrics"
)

// Query drives a single page through navigation and metric collection. The
// outcome is classified on the returned QueryResult: success leaves Error
// nil, a non-2xx main document status sets the numeric code, a deadline sets
// the timeout marker, and any other transport fault sets its description. The
// page is closed on every exit path; callers always get a result back and
// distinguish success from failure by inspecting Error.
func Query(ctx context.Context, sess *Session, domain string, timeout time.Duration, log *slog.Logger) *metrics.QueryResult {
	if log == nil {
		log = slog.Default()
	}
	log.Debug("browser: querying", "domain", domain)

	result := metrics.NewQueryResult()

	page, err := sess.NewPage()
	if err != nil {
		result.SetException(err.Error())
		log.Error("browser: open page failed", "domain", domain, "error", err)
		return result
	}
	defer func() {
		// Close via the session-scoped page handle: the query context may
		// already be expired when a timeout brought us here.
		if err := page.Close(); err != nil {
			log.Warn("browser: page close failed", "domain", domain, "error", err)
		}
	}()

	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	p := page.Context(qctx)

	collector := NewCollector(result)
	detach := collector.Attach(p)

	err = navigate(p, domain)
	detach()

	mainStatus := 0
	if err == nil {
		mainStatus = collector.MainStatus()
		err = collector.CollectTimings(p)
	}

	classify(result, mainStatus, err)

	switch {
	case result.Error == nil:
	case result.Error.Message == metrics.TimeoutMarker:
		log.Error("browser: page load timed out", "domain", domain, "timeout", timeout)
	case result.Error.Message != "":
		log.Error("browser: query failed", "domain", domain, "error", err)
	default:
		log.Error("browser: error status", "domain", domain, "code", mainStatus)
	}

	return result
}

// classify records the query outcome on the result: a deadline sets the
// timeout marker, any other fault sets its description, a non-2xx main
// document status sets the numeric code, and success leaves Error nil. A
// zero status means no document response was observed and is not an error
// on its own.
func classify(result *metrics.QueryResult, mainStatus int, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.SetException(metrics.TimeoutMarker)
	case err != nil:
		result.SetException(err.Error())
	case mainStatus != 0 && (mainStatus < 200 || mainStatus >= 300):
		result.SetHTTPError(mainStatus)
	}
}

// navigate loads the URL and waits for the window load event. Load, not
// DOM-ready and not network-idle: it bounds the wait while still capturing
// first paint for most sites.
func navigate(p *rod.Page, url string) error {
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}
