package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Browser engines a profile may request
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// DefaultProfileName is used when PROFILE is unset
const DefaultProfileName = "default"

// Viewport is the browser window size for new contexts
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Profile selects how the BDD suite drives the browser
type Profile struct {
	Name        string        `yaml:"-"`
	Browser     string        `yaml:"browser"`
	Headless    bool          `yaml:"headless"`
	StepTimeout time.Duration `yaml:"step_timeout"`
	Paths       []string      `yaml:"paths"`
	Format      string        `yaml:"format"`
	Parallel    int           `yaml:"parallel"`
	Viewport    Viewport      `yaml:"viewport"`
}

type profileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// ParseProfiles decodes a profiles document and validates every entry
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var doc profileFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles defined")
	}

	for name, p := range doc.Profiles {
		p.Name = name
		if p.Browser == "" {
			p.Browser = BrowserChromium
		}
		if err := validateBrowser(p.Browser); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		if p.Parallel < 1 {
			p.Parallel = 1
		}
		if p.Format == "" {
			p.Format = "pretty"
		}
		if p.Viewport.Width == 0 || p.Viewport.Height == 0 {
			p.Viewport = Viewport{Width: 1920, Height: 1080}
		}
		if p.StepTimeout == 0 {
			p.StepTimeout = 60 * time.Second
		}
		doc.Profiles[name] = p
	}

	return doc.Profiles, nil
}

// LoadProfiles reads and parses a profiles file
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	return ParseProfiles(data)
}

// SelectProfile picks the profile named by PROFILE (or default), then applies
// the BROWSER and CI overrides.
func SelectProfile(profiles map[string]Profile, getenv func(string) string) (Profile, error) {
	name := getenv("PROFILE")
	if name == "" {
		name = DefaultProfileName
	}

	p, ok := profiles[name]
	if !ok {
		names := make([]string, 0, len(profiles))
		for n := range profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, names)
	}

	if b := getenv("BROWSER"); b != "" {
		if err := validateBrowser(b); err != nil {
			return Profile{}, err
		}
		p.Browser = b
	}
	if IsCI(getenv) {
		p.Headless = true
	}

	return p, nil
}

// IsCI reports whether CI is set to a truthy value
func IsCI(getenv func(string) string) bool {
	v := getenv("CI")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		// Any other non-empty value, e.g. CI=yes
		return true
	}
	return b
}

func validateBrowser(name string) error {
	switch name {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
		return nil
	default:
		return fmt.Errorf("unsupported browser %q", name)
	}
}
