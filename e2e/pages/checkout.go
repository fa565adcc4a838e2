package pages

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

const (
	firstNameInput      = "#first-name"
	lastNameInput       = "#last-name"
	postalCodeInput     = "#postal-code"
	continueButton      = "#continue"
	finishButton        = "#finish"
	confirmationMessage = ".complete-header"
)

// OrderConfirmation is the header shown once an order completes
const OrderConfirmation = "Thank you for your order!"

// ShippingInfo is the customer data the checkout form asks for
type ShippingInfo struct {
	FirstName  string
	LastName   string
	PostalCode string
}

// CheckoutPage covers the sauce-demo checkout steps
type CheckoutPage struct {
	BasePage
}

// NewCheckoutPage creates a CheckoutPage
func NewCheckoutPage(page playwright.Page) *CheckoutPage {
	return &CheckoutPage{BasePage: NewBasePage(page)}
}

// FillShippingInfo fills the customer information form
func (p *CheckoutPage) FillShippingInfo(info ShippingInfo) error {
	fields := []struct {
		selector string
		value    string
	}{
		{firstNameInput, info.FirstName},
		{lastNameInput, info.LastName},
		{postalCodeInput, info.PostalCode},
	}
	for _, f := range fields {
		if err := p.page.Locator(f.selector).Fill(f.value); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.selector, err)
		}
	}
	return nil
}

// ClickContinue moves on to the overview
func (p *CheckoutPage) ClickContinue() error {
	return p.Click(continueButton)
}

// ClickFinish places the order
func (p *CheckoutPage) ClickFinish() error {
	return p.Click(finishButton)
}

// ConfirmationMessage waits for and returns the completion header
func (p *CheckoutPage) ConfirmationMessage() string {
	if err := p.WaitForElement(confirmationMessage, DefaultTimeout); err != nil {
		return ""
	}
	return strings.TrimSpace(p.Text(confirmationMessage))
}
