// Package overhead orchestrates the extension-overhead measurement: two
// isolated browser sessions over the same domain list — first with the
// extension loaded, then without — evaluated, correlated and persisted as
// three JSON documents.
//
// overhead measures, it does not interpret. Page content is never inspected;
// only network counts/sizes and navigation/paint timings are recorded.
package overhead

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/extbench/metrics"
	"github.com/hazyhaar/extbench/overhead/internal/browser"
	"github.com/hazyhaar/extbench/overhead/internal/config"
	"github.com/hazyhaar/extbench/overhead/internal/source"
	"github.com/hazyhaar/extbench/runlog"
)

// Runner executes the full measurement pipeline. Create one per run.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	archive *runlog.Store
}

// New creates a Runner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes the whole pipeline: load the domain list, crawl with the
// extension, crawl the visited domains again without it, evaluate both raw
// sets, correlate, and write the three result files. The two sessions are
// never open at the same time.
func (r *Runner) Run(ctx context.Context) error {
	domains, err := source.Load(r.cfg.DomainList, r.logger)
	if err != nil {
		return err
	}

	if r.cfg.RunLog != "" {
		archive, err := runlog.Open(r.cfg.RunLog, r.logger)
		if err != nil {
			return fmt.Errorf("overhead: open run log: %w", err)
		}
		defer archive.Close()
		r.archive = archive
	}

	r.logger.Info("overhead: starting with-extension session",
		"extension", r.cfg.Browser.ExtensionDir, "target", r.cfg.TargetSuccesses)
	withRaw, err := r.RunSession(ctx, domains, true)
	if err != nil {
		return err
	}
	withEval := metrics.Evaluate(withRaw, r.logger)
	r.logger.Info("overhead: with-extension measurements collected",
		"measured", len(withEval), "visited", withRaw.Len())

	// The baseline replays exactly the domains the first session visited,
	// in the same order.
	r.logger.Info("overhead: starting baseline session")
	baseRaw, err := r.RunSession(ctx, withRaw.Domains(), false)
	if err != nil {
		return err
	}
	baseEval := metrics.Evaluate(baseRaw, r.logger)
	r.logger.Info("overhead: baseline measurements collected",
		"measured", len(baseEval), "visited", baseRaw.Len())

	correlated := metrics.Correlate(withEval, baseEval)
	r.logger.Info("overhead: correlated common domains", "domains", len(correlated))

	out := r.cfg.Output
	if err := metrics.WriteFile(out.WithExtension, withEval); err != nil {
		return err
	}
	if err := metrics.WriteFile(out.WithoutExtension, baseEval); err != nil {
		return err
	}
	if err := metrics.WriteFile(out.Correlated, correlated); err != nil {
		return err
	}

	r.logger.Info("overhead: results written",
		"with_extension", out.WithExtension,
		"without_extension", out.WithoutExtension,
		"correlated", out.Correlated)
	return nil
}

// RunSession owns one browser profile lifecycle: fresh profile, launch with
// or without the extension, sequential queries until the success target is
// reached, session closed on every exit path. The returned set holds every
// visited domain, failures included, in visitation order.
func (r *Runner) RunSession(ctx context.Context, domains []string, withExtension bool) (*metrics.RawResults, error) {
	bc := r.cfg.Browser

	profile, extDir := bc.ProfileWithoutExtension, ""
	if withExtension {
		profile, extDir = bc.ProfileWithExtension, bc.ExtensionDir
	}

	sess, err := browser.Launch(ctx, browser.LaunchConfig{
		ProfileDir:   profile,
		ExtensionDir: extDir,
		Headless:     bc.Headless,
		Stealth:      bc.Stealth,
		Logger:       r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("overhead: launch session: %w", err)
	}
	defer sess.Close()

	if withExtension {
		// Fixed pause: Chrome exposes no ready signal for extension
		// background startup, so this can race on slow extensions.
		r.logger.Info("overhead: waiting for extension to initialise",
			"delay", bc.ExtensionInitDelay)
		select {
		case <-time.After(bc.ExtensionInitDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	runID := r.archive.StartRun(ctx, withExtension)

	results, successes, err := crawl(ctx, domains, r.cfg.TargetSuccesses,
		func(ctx context.Context, domain string) *metrics.QueryResult {
			return browser.Query(ctx, sess, domain, bc.PageTimeout, r.logger)
		},
		func(domain string, res *metrics.QueryResult) {
			r.archive.RecordResult(ctx, runID, domain, res)
		},
		r.logger)

	r.archive.FinishRun(ctx, runID, results.Len(), successes)
	if err != nil {
		return nil, err
	}

	r.logger.Info("overhead: session finished",
		"with_extension", withExtension,
		"visited", results.Len(), "successes", successes)
	return results, nil
}

// queryFunc is browser.Query narrowed to what the crawl loop needs.
type queryFunc func(ctx context.Context, domain string) *metrics.QueryResult

// crawl visits domains strictly in order, one page at a time, until the
// sequence is exhausted or target error-free results were collected.
// Domains beyond that point are never visited. record is called for every
// result, failures included.
func crawl(ctx context.Context, domains []string, target int, query queryFunc,
	record func(domain string, r *metrics.QueryResult), log *slog.Logger,
) (*metrics.RawResults, int, error) {
	results := metrics.NewRawResults()
	successes := 0

	for _, domain := range domains {
		if successes >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, successes, err
		}

		res := query(ctx, domain)
		results.Add(domain, res)
		record(domain, res)

		if res.Failed() {
			log.Warn("overhead: query failed, skipping", "domain", domain)
			continue
		}
		successes++
		log.Info("overhead: query succeeded",
			"domain", domain, "successes", successes, "target", target)
	}

	return results, successes, nil
}
