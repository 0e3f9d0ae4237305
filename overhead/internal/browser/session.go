// Package browser drives Chrome for one measurement session: a persistent
// profile-backed launch (with or without the extension), one page per
// domain, and network/timing collection per page.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// LaunchConfig configures one session launch.
type LaunchConfig struct {
	// ProfileDir is the Chrome user data directory. It is destroyed and
	// recreated on launch so no state survives between sessions.
	ProfileDir string

	// ExtensionDir, when non-empty, is the unpacked extension to load.
	// Chrome ties extension loading to a profile-backed, headed launch.
	ExtensionDir string

	// Headless runs Chrome without a window. Ignored when an extension is
	// loaded.
	Headless bool

	// Stealth creates pages through go-rod/stealth.
	Stealth bool

	Logger *slog.Logger
}

// Session is one running Chrome bound to one isolated profile.
type Session struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	stealth bool
	logger  *slog.Logger
}

// Launch recreates the profile directory and starts Chrome bound to it.
// When an extension is requested the directory must exist, otherwise Launch
// fails before Chrome starts.
func Launch(ctx context.Context, cfg LaunchConfig) (*Session, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// Fresh profile: no cookies, cache or extension storage carries over
	// between the with/without sessions or between repeated invocations.
	if err := os.RemoveAll(cfg.ProfileDir); err != nil {
		return nil, fmt.Errorf("browser: clear profile %s: %w", cfg.ProfileDir, err)
	}
	if err := os.MkdirAll(cfg.ProfileDir, 0o755); err != nil {
		return nil, fmt.Errorf("browser: create profile %s: %w", cfg.ProfileDir, err)
	}

	l := launcher.New().Context(ctx).UserDataDir(cfg.ProfileDir)

	if cfg.ExtensionDir != "" {
		if _, err := os.Stat(cfg.ExtensionDir); err != nil {
			return nil, fmt.Errorf("browser: extension directory %s (must contain manifest.json): %w",
				cfg.ExtensionDir, err)
		}
		// Extensions only load in headed Chrome.
		l = l.Headless(false).
			Set("disable-extensions-except", cfg.ExtensionDir).
			Set("load-extension", cfg.ExtensionDir)
		log.Info("browser: launching with extension", "extension", cfg.ExtensionDir)
	} else {
		l = l.Headless(cfg.Headless).Set("disable-extensions")
		log.Info("browser: launching without extension", "headless", cfg.Headless)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}

	return &Session{browser: b, lnch: l, stealth: cfg.Stealth, logger: log}, nil
}

// NewPage opens a blank page in the session.
func (s *Session) NewPage() (*rod.Page, error) {
	if s.stealth {
		return stealth.Page(s.browser)
	}
	return s.browser.Page(proto.TargetCreateTarget{URL: ""})
}

// Close shuts down Chrome and removes the launcher's temp state. Close
// failures are logged, never propagated — a dying browser must not fail
// the run.
func (s *Session) Close() {
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("browser: close failed", "error", err)
	}
	s.lnch.Cleanup()
}
