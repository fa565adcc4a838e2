// Package session owns the browser shared by a BDD run and the per-scenario
// contexts opened on it.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/themizzi/bookstore/internal/config"
)

// DegradedUser is the sauce-demo persona whose pages load slowly
const DegradedUser = "performance_glitch_user"

// DegradedTimeout is the default and navigation timeout, in milliseconds, for
// scenarios that exercise DegradedUser
const DegradedTimeout = 60000.0

// ErrClosed is returned when a scenario is requested after Close
var ErrClosed = errors.New("session closed")

// Launcher starts a browser of the given engine
type Launcher func(engine string, headless bool) (playwright.Browser, error)

// Options configures a Session
type Options struct {
	Engine   string
	Headless bool
	Viewport config.Viewport
}

// OptionsFromProfile builds Options from a suite profile
func OptionsFromProfile(p config.Profile) Options {
	return Options{Engine: p.Browser, Headless: p.Headless, Viewport: p.Viewport}
}

// Session holds one browser for the whole run and relaunches it when a
// scenario asks for another engine
type Session struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	launch   Launcher
	browser  playwright.Browser
	engine   string
	headless bool
	viewport config.Viewport
	closed   bool
}

// Start runs playwright and launches the requested engine
func Start(opts Options) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	s, err := StartWith(PlaywrightLauncher(pw), opts)
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			log.Printf("Failed to stop playwright: %v", stopErr)
		}
		return nil, err
	}
	s.pw = pw
	return s, nil
}

// StartWith launches the first browser through launch
func StartWith(launch Launcher, opts Options) (*Session, error) {
	if opts.Engine == "" {
		opts.Engine = config.BrowserChromium
	}
	if opts.Viewport.Width == 0 || opts.Viewport.Height == 0 {
		opts.Viewport = config.Viewport{Width: 1920, Height: 1080}
	}

	browser, err := launch(opts.Engine, opts.Headless)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Engine, err)
	}
	log.Printf("Launched %s (headless=%v)", opts.Engine, opts.Headless)

	return &Session{
		launch:   launch,
		browser:  browser,
		engine:   opts.Engine,
		headless: opts.Headless,
		viewport: opts.Viewport,
	}, nil
}

// PlaywrightLauncher launches engines from a running playwright instance
func PlaywrightLauncher(pw *playwright.Playwright) Launcher {
	return func(engine string, headless bool) (playwright.Browser, error) {
		var browserType playwright.BrowserType
		switch engine {
		case config.BrowserFirefox:
			browserType = pw.Firefox
		case config.BrowserWebKit:
			browserType = pw.WebKit
		default:
			browserType = pw.Chromium
		}
		return browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(headless),
		})
	}
}

// Engine returns the engine of the current browser
func (s *Session) Engine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// NewScenario opens a fresh context and page for one scenario. An empty
// engine keeps the current browser.
func (s *Session) NewScenario(name, engine string) (*Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if engine == "" {
		engine = s.engine
	}
	if s.browser == nil || engine != s.engine {
		if err := s.switchEngine(engine); err != nil {
			log.Printf("Failed to switch browser: %v", err)
			return nil, err
		}
	}

	ctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: s.viewport.Width, Height: s.viewport.Height},
	})
	if err != nil {
		log.Printf("Failed to create context: %v", err)
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		log.Printf("Failed to create page: %v", err)
		if closeErr := ctx.Close(); closeErr != nil {
			log.Printf("Failed to close context: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	sc := &Scenario{
		ID:      uuid.NewString(),
		Name:    name,
		Context: ctx,
		Page:    page,
	}
	if sc.IsDegraded() {
		page.SetDefaultTimeout(DegradedTimeout)
		page.SetDefaultNavigationTimeout(DegradedTimeout)
	}
	return sc, nil
}

// switchEngine replaces the current browser, if any, with one running
// engine. After a failed launch the session holds no browser and the next
// scenario launches again. Must be called with mu held.
func (s *Session) switchEngine(engine string) error {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("Failed to close %s: %v", s.engine, err)
		}
		s.browser = nil
	}

	browser, err := s.launch(engine, s.headless)
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", engine, err)
	}
	log.Printf("Switched browser from %s to %s", s.engine, engine)

	s.browser = browser
	s.engine = engine
	return nil
}

// Close shuts the browser and playwright down; errors are logged
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("Error closing browser: %v", err)
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.Printf("Error stopping playwright: %v", err)
		}
	}
}

// Scenario is the isolated browser state of one scenario
type Scenario struct {
	ID      string
	Name    string
	Context playwright.BrowserContext
	Page    playwright.Page
}

// IsDegraded reports whether the scenario exercises the slow persona
func (sc *Scenario) IsDegraded() bool {
	return strings.Contains(sc.Name, DegradedUser)
}

// Close closes the page and its context; errors are logged
func (sc *Scenario) Close() {
	if sc.Page != nil {
		if err := sc.Page.Close(); err != nil {
			log.Printf("Error closing page for %q: %v", sc.Name, err)
		}
	}
	if sc.Context != nil {
		if err := sc.Context.Close(); err != nil {
			log.Printf("Error closing context for %q: %v", sc.Name, err)
		}
	}
}
