// Package source reads crawl targets from a Tranco-style CSV file.
package source

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// scheme is prefixed to every bare domain to form a navigable URL.
const scheme = "https://"

// Load parses a ranked domain list. Each row is comma-separated and the last
// field is the bare domain (Tranco format: "rank,domain"). Rows without a
// comma degrade to treating the whole line as the domain. Blank lines are
// skipped. File order is preserved — it drives the crawl sequence.
//
// Entries whose suffix is not ICANN-managed are kept but logged, since they
// usually indicate a malformed list rather than a crawlable site.
func Load(path string, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	var domains []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		domain := fields[len(fields)-1]

		if _, icann := publicsuffix.PublicSuffix(domain); !icann {
			log.Warn("source: domain suffix is not ICANN-managed", "domain", domain)
		}

		domains = append(domains, scheme+domain)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}

	log.Info("source: loaded domain list", "path", path, "count", len(domains))
	return domains, nil
}
