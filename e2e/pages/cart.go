package pages

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

const (
	cartItem               = ".cart_item"
	cartList               = ".cart_list"
	cartItemName           = ".inventory_item_name"
	cartItemPrice          = ".inventory_item_price"
	cartRemoveButton       = ".btn_secondary"
	checkoutButton         = `[data-test="checkout"]`
	continueShoppingButton = `[data-test="continue-shopping"]`
)

// CartPage is the sauce-demo cart
type CartPage struct {
	BasePage
}

// NewCartPage creates a CartPage
func NewCartPage(page playwright.Page) *CartPage {
	return &CartPage{BasePage: NewBasePage(page)}
}

// WaitForPageLoad waits for the cart list
func (p *CartPage) WaitForPageLoad() error {
	return p.WaitForElement(cartList, PageLoadTimeout)
}

// HasItemInCart reports whether at least one item is shown
func (p *CartPage) HasItemInCart() bool {
	return p.IsElementVisible(cartItem)
}

// RemoveItem removes the item with the given name, or the first item when
// name is empty
func (p *CartPage) RemoveItem(name string) error {
	items := p.page.Locator(cartItem)
	if name != "" {
		items = items.Filter(playwright.LocatorFilterOptions{HasText: name})
	}
	if err := items.First().Locator(cartRemoveButton).Click(); err != nil {
		return fmt.Errorf("failed to remove %q from cart: %w", name, err)
	}
	return nil
}

// RemoveItemByTestID clicks the remove button with the given data-test id,
// e.g. remove-sauce-labs-backpack
func (p *CartPage) RemoveItemByTestID(testID string) error {
	return p.Click(fmt.Sprintf(`[data-test=%q]`, testID))
}

// ProceedToCheckout starts checkout
func (p *CartPage) ProceedToCheckout() error {
	return p.Click(checkoutButton)
}

// ContinueShopping returns to the inventory
func (p *CartPage) ContinueShopping() error {
	return p.Click(continueShoppingButton)
}

// IsCartEmpty reports whether no item is shown
func (p *CartPage) IsCartEmpty() bool {
	return !p.HasItemInCart()
}

// ItemName returns the name of the i-th item, "" when there is none
func (p *CartPage) ItemName(i int) string {
	return nth(p.Texts(cartItemName), i)
}

// ItemPrice returns the price text of the i-th item, "" when there is none
func (p *CartPage) ItemPrice(i int) string {
	return nth(p.Texts(cartItemPrice), i)
}

// ItemCount returns the number of items in the cart
func (p *CartPage) ItemCount() int {
	return p.Count(cartItem)
}

func nth(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}
