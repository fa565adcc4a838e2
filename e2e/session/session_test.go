package session

import (
	"errors"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/themizzi/bookstore/internal/config"
)

// fakePage records the timeouts set on it
type fakePage struct {
	playwright.Page
	timeout           float64
	navigationTimeout float64
	closed            bool
}

func (p *fakePage) SetDefaultTimeout(timeout float64)           { p.timeout = timeout }
func (p *fakePage) SetDefaultNavigationTimeout(timeout float64) { p.navigationTimeout = timeout }
func (p *fakePage) Close(options ...playwright.PageCloseOptions) error {
	p.closed = true
	return nil
}

type fakeContext struct {
	playwright.BrowserContext
	page    *fakePage
	pageErr error
	closed  bool
}

func (c *fakeContext) NewPage() (playwright.Page, error) {
	if c.pageErr != nil {
		return nil, c.pageErr
	}
	c.page = &fakePage{}
	return c.page, nil
}

func (c *fakeContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.closed = true
	return errors.New("already closed")
}

type fakeBrowser struct {
	playwright.Browser
	engine   string
	viewport *playwright.Size
	contexts []*fakeContext
	pageErr  error
	closed   bool
}

func (b *fakeBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	if b.closed {
		return nil, errors.New("browser has been closed")
	}
	if len(options) > 0 {
		b.viewport = options[0].Viewport
	}
	ctx := &fakeContext{pageErr: b.pageErr}
	b.contexts = append(b.contexts, ctx)
	return ctx, nil
}

func (b *fakeBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.closed = true
	return nil
}

// fakeLauncher hands out fakeBrowsers and remembers them
type fakeLauncher struct {
	launched []*fakeBrowser
	fail     string
}

func (l *fakeLauncher) launch(engine string, headless bool) (playwright.Browser, error) {
	if engine == l.fail {
		return nil, errors.New("executable doesn't exist")
	}
	b := &fakeBrowser{engine: engine}
	l.launched = append(l.launched, b)
	return b, nil
}

func TestStartWith_Defaults(t *testing.T) {
	l := &fakeLauncher{}

	s, err := StartWith(l.launch, Options{Headless: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if s.Engine() != config.BrowserChromium {
		t.Errorf("expected chromium, got %s", s.Engine())
	}
	if len(l.launched) != 1 {
		t.Fatalf("expected 1 launch, got %d", len(l.launched))
	}

	sc, err := s.NewScenario("Successful login", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sc.Close()

	vp := l.launched[0].viewport
	if vp == nil || vp.Width != 1920 || vp.Height != 1080 {
		t.Errorf("expected 1920x1080 viewport, got %+v", vp)
	}
}

func TestStartWith_LaunchFailure(t *testing.T) {
	l := &fakeLauncher{fail: config.BrowserWebKit}

	if _, err := StartWith(l.launch, Options{Engine: config.BrowserWebKit}); err == nil {
		t.Fatal("expected launch error")
	}
}

func TestNewScenario_DegradedTimeouts(t *testing.T) {
	tests := []struct {
		name        string
		scenario    string
		wantTimeout float64
	}{
		{"degraded user", "Sort products as performance_glitch_user", DegradedTimeout},
		{"standard user", "Sort products as standard_user", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLauncher{}
			s, err := StartWith(l.launch, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer s.Close()

			sc, err := s.NewScenario(tt.scenario, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			page := sc.Page.(*fakePage)
			if page.timeout != tt.wantTimeout || page.navigationTimeout != tt.wantTimeout {
				t.Errorf("expected timeouts %v, got %v/%v", tt.wantTimeout, page.timeout, page.navigationTimeout)
			}
			if sc.ID == "" {
				t.Error("expected scenario id")
			}
		})
	}
}

func TestNewScenario_SwitchesEngine(t *testing.T) {
	// GIVEN a session on chromium
	l := &fakeLauncher{}
	s, err := StartWith(l.launch, Options{Engine: config.BrowserChromium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	// WHEN a scenario asks for firefox twice
	for i := 0; i < 2; i++ {
		sc, err := s.NewScenario("Login", config.BrowserFirefox)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sc.Close()
	}

	// THEN the browser is relaunched once
	if len(l.launched) != 2 {
		t.Fatalf("expected 2 launches, got %d", len(l.launched))
	}
	if !l.launched[0].closed {
		t.Error("expected chromium to be closed")
	}
	if s.Engine() != config.BrowserFirefox {
		t.Errorf("expected firefox, got %s", s.Engine())
	}
	if len(l.launched[1].contexts) != 2 {
		t.Errorf("expected 2 contexts on firefox, got %d", len(l.launched[1].contexts))
	}
}

func TestNewScenario_SwitchFailure(t *testing.T) {
	l := &fakeLauncher{fail: config.BrowserWebKit}
	s, err := StartWith(l.launch, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if _, err := s.NewScenario("Login", config.BrowserWebKit); err == nil {
		t.Fatal("expected switch error")
	}
}

func TestNewScenario_RecoversAfterSwitchFailure(t *testing.T) {
	// GIVEN a session whose switch to webkit failed
	l := &fakeLauncher{fail: config.BrowserWebKit}
	s, err := StartWith(l.launch, Options{Engine: config.BrowserChromium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	if _, err := s.NewScenario("Login", config.BrowserWebKit); err == nil {
		t.Fatal("expected switch error")
	}

	// WHEN the next scenario runs on the previous engine
	sc, err := s.NewScenario("Cart", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sc.Close()

	// THEN a fresh chromium replaces the closed one
	if len(l.launched) != 2 {
		t.Fatalf("expected 2 launches, got %d", len(l.launched))
	}
	if !l.launched[0].closed {
		t.Error("expected the first chromium to be closed")
	}
	if l.launched[1].engine != config.BrowserChromium || len(l.launched[1].contexts) != 1 {
		t.Errorf("expected the scenario on a relaunched chromium, got %s with %d contexts",
			l.launched[1].engine, len(l.launched[1].contexts))
	}
	if s.Engine() != config.BrowserChromium {
		t.Errorf("expected chromium, got %s", s.Engine())
	}
}

func TestNewScenario_PageFailureClosesContext(t *testing.T) {
	l := &fakeLauncher{}
	s, err := StartWith(l.launch, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	l.launched[0].pageErr = errors.New("target closed")

	if _, err := s.NewScenario("Login", ""); err == nil {
		t.Fatal("expected page error")
	}
	if !l.launched[0].contexts[0].closed {
		t.Error("expected context to be closed")
	}
}

func TestScenario_CloseSwallowsErrors(t *testing.T) {
	l := &fakeLauncher{}
	s, err := StartWith(l.launch, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	sc, err := s.NewScenario("Login", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// fakeContext.Close always errors; Close must still finish
	sc.Close()

	ctx := l.launched[0].contexts[0]
	if !ctx.page.closed || !ctx.closed {
		t.Error("expected page and context to be closed")
	}
}

func TestSession_Close(t *testing.T) {
	l := &fakeLauncher{}
	s, err := StartWith(l.launch, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Close()
	s.Close()

	if !l.launched[0].closed {
		t.Error("expected browser to be closed")
	}
	if _, err := s.NewScenario("Login", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOptionsFromProfile(t *testing.T) {
	p := config.Profile{Browser: config.BrowserWebKit, Headless: true, Viewport: config.Viewport{Width: 1280, Height: 720}}
	opts := OptionsFromProfile(p)
	if opts.Engine != config.BrowserWebKit || !opts.Headless || opts.Viewport.Width != 1280 {
		t.Errorf("unexpected options %+v", opts)
	}
}
