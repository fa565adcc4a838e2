package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// DefaultSauceDemoURL is the public sauce-demo storefront
const DefaultSauceDemoURL = "https://www.saucedemo.com/"

// Password shared by every sauce-demo persona
const SauceDemoPassword = "secret_sauce"

const (
	usernameInput     = "#user-name"
	passwordInput     = "#password"
	loginButton       = "#login-button"
	loginErrorMessage = `[data-test="error"]`
)

// LoginPage is the sauce-demo login form
type LoginPage struct {
	BasePage
	baseURL string
}

// NewLoginPage creates a LoginPage; an empty baseURL means DefaultSauceDemoURL
func NewLoginPage(page playwright.Page, baseURL string) *LoginPage {
	if baseURL == "" {
		baseURL = DefaultSauceDemoURL
	}
	return &LoginPage{BasePage: NewBasePage(page), baseURL: baseURL}
}

// Navigate opens the login page and waits for the form
func (p *LoginPage) Navigate() error {
	if _, err := p.page.Goto(p.baseURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	return p.page.Locator(loginButton).WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
}

// EnterUsername fills the username field
func (p *LoginPage) EnterUsername(username string) error {
	return p.page.Locator(usernameInput).Fill(username)
}

// EnterPassword fills the password field
func (p *LoginPage) EnterPassword(password string) error {
	return p.page.Locator(passwordInput).Fill(password)
}

// ClickLogin submits the form
func (p *LoginPage) ClickLogin() error {
	return p.page.Locator(loginButton).Click()
}

// Login fills both fields and submits
func (p *LoginPage) Login(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := p.EnterPassword(password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := p.ClickLogin(); err != nil {
		return fmt.Errorf("failed to click login: %w", err)
	}
	return nil
}

// IsLoginButtonVisible reports whether the login button is shown
func (p *LoginPage) IsLoginButtonVisible() bool {
	return p.IsElementVisible(loginButton)
}

// ErrorMessage waits for and returns the login error banner text
func (p *LoginPage) ErrorMessage() string {
	if err := p.WaitForElement(loginErrorMessage, DefaultTimeout); err != nil {
		return ""
	}
	return p.Text(loginErrorMessage)
}
