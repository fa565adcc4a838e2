// Package pages holds the page objects that drive the sauce-demo site and the
// book store through playwright.
package pages

import (
	"context"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Lookup timeouts in milliseconds
const (
	DefaultTimeout  = 5000.0
	DegradedTimeout = 60000.0
	PageLoadTimeout = 60000.0
	SlowLoadTimeout = 120000.0
)

// BasePage wraps the page shared by every page object
type BasePage struct {
	page playwright.Page
}

// NewBasePage creates a BasePage over page
func NewBasePage(page playwright.Page) BasePage {
	return BasePage{page: page}
}

// Page returns the underlying playwright page
func (b BasePage) Page() playwright.Page {
	return b.page
}

// WaitForElement waits until selector is visible
func (b BasePage) WaitForElement(selector string, timeout float64) error {
	return b.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeout),
	})
}

// Text returns the text of the first match, or "" when there is none or it
// cannot be read. It never waits for the element to appear.
func (b BasePage) Text(selector string) string {
	if b.Count(selector) == 0 {
		return ""
	}
	text, err := b.page.Locator(selector).First().TextContent()
	if err != nil {
		log.Printf("Could not read text of %s: %v", selector, err)
		return ""
	}
	return text
}

// Texts returns the text of every match, or an empty slice when they cannot be read
func (b BasePage) Texts(selector string) []string {
	texts, err := b.page.Locator(selector).AllTextContents()
	if err != nil {
		log.Printf("Could not read texts of %s: %v", selector, err)
		return []string{}
	}
	return texts
}

// IsElementVisible reports whether the first match is visible right now
func (b BasePage) IsElementVisible(selector string) bool {
	visible, err := b.page.Locator(selector).First().IsVisible()
	if err != nil {
		log.Printf("Could not check visibility of %s: %v", selector, err)
		return false
	}
	return visible
}

// Count returns the number of matches, or 0 when they cannot be counted
func (b BasePage) Count(selector string) int {
	n, err := b.page.Locator(selector).Count()
	if err != nil {
		log.Printf("Could not count %s: %v", selector, err)
		return 0
	}
	return n
}

// Click clicks the first match
func (b BasePage) Click(selector string) error {
	return b.page.Locator(selector).First().Click()
}

// Pause waits for d or until ctx is done
func Pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
