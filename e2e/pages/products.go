package pages

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/themizzi/bookstore/internal/mailbox"
	"github.com/themizzi/bookstore/internal/retry"
)

const (
	addToCartButton       = `[data-test^="add-to-cart"]`
	cartIcon              = ".shopping_cart_link"
	cartBadge             = ".shopping_cart_badge"
	productItem           = ".inventory_item"
	sortDropdown          = ".select_container"
	sortDropdownContainer = `[data-test="product-sort-container"]`
	activeSortOption      = `[data-test="active-option"]`
	productName           = ".inventory_item_name"
	productPrice          = ".inventory_item_price"
	inventoryList         = ".inventory_list"
	backToProducts        = `[data-test="back-to-products"]`
)

// Waits around sorting
var (
	DialogWait         = 100 * time.Millisecond
	DegradedSettleWait = 5 * time.Second
	SelectionPollDelay = 500 * time.Millisecond
	VerifyDelay        = time.Second
	DegradedDelay      = 2 * time.Second
)

// Attempt budgets for sort verification
const (
	VerifyAttempts         = 3
	DegradedVerifyAttempts = 5
	selectionPollAttempts  = 20
)

// ProductsPage is the sauce-demo inventory
type ProductsPage struct {
	BasePage
	dialogs *mailbox.Slot[string]
}

// NewProductsPage creates a ProductsPage and starts accepting page dialogs.
// Create one per page: every instance registers its own dialog handler.
func NewProductsPage(page playwright.Page) *ProductsPage {
	p := &ProductsPage{
		BasePage: NewBasePage(page),
		dialogs:  &mailbox.Slot[string]{},
	}
	page.OnDialog(p.handleDialog)
	return p
}

func (p *ProductsPage) handleDialog(dialog playwright.Dialog) {
	message := dialog.Message()
	if p.dialogs.Offer(message) {
		log.Printf("Captured dialog: %s", message)
	}
	if err := dialog.Accept(); err != nil {
		log.Printf("Could not accept dialog: %v", err)
	}
}

// WaitForPageLoad waits for the inventory; the degraded user gets longer
// timeouts and an extra settle delay.
func (p *ProductsPage) WaitForPageLoad(ctx context.Context, isPerformanceUser bool) error {
	timeout := PageLoadTimeout
	if isPerformanceUser {
		timeout = SlowLoadTimeout
	}

	if err := p.WaitForElement(inventoryList, timeout); err != nil {
		return fmt.Errorf("inventory list did not load: %w", err)
	}
	if err := p.WaitForElement(productItem, timeout); err != nil {
		log.Printf("Products list not found, continuing: %v", err)
	}

	if isPerformanceUser {
		return Pause(ctx, DegradedSettleWait)
	}
	return nil
}

// IsOnProductsPage reports whether the inventory list is shown
func (p *ProductsPage) IsOnProductsPage(ctx context.Context) bool {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		log.Printf("Not on products page: %v", err)
		return false
	}
	return p.IsElementVisible(inventoryList)
}

// AddFirstItemToCart clicks the first add-to-cart button
func (p *ProductsPage) AddFirstItemToCart(ctx context.Context) error {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		return err
	}
	return p.Click(addToCartButton)
}

// AddAllItemsToCart clicks every add-to-cart button, last first
func (p *ProductsPage) AddAllItemsToCart(ctx context.Context) error {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		return err
	}
	buttons := p.page.Locator(addToCartButton)
	n, err := buttons.Count()
	if err != nil {
		return fmt.Errorf("failed to count add-to-cart buttons: %w", err)
	}
	for i := n - 1; i >= 0; i-- {
		if err := buttons.Nth(i).Click(); err != nil {
			return fmt.Errorf("failed to add item %d: %w", i, err)
		}
	}
	return nil
}

// ClickCartIcon opens the cart
func (p *ProductsPage) ClickCartIcon() error {
	return p.Click(cartIcon)
}

// CartBadgeCount returns the badge text, "" when there is no badge
func (p *ProductsPage) CartBadgeCount() string {
	return strings.TrimSpace(p.Text(cartBadge))
}

// IsCartBadgeVisible reports whether the cart badge is shown
func (p *ProductsPage) IsCartBadgeVisible() bool {
	return p.IsElementVisible(cartBadge)
}

// AddedToCartCount returns the badge as a number, 0 when absent
func (p *ProductsPage) AddedToCartCount() int {
	n, err := strconv.Atoi(p.CartBadgeCount())
	if err != nil {
		return 0
	}
	return n
}

// AddToCartButtonCount counts the add-to-cart buttons still shown
func (p *ProductsPage) AddToCartButtonCount() int {
	return p.Count(addToCartButton)
}

// IsSortDropdownVisible waits briefly for the sort dropdown
func (p *ProductsPage) IsSortDropdownVisible(isPerformanceUser bool) bool {
	timeout := DefaultTimeout
	if isPerformanceUser {
		timeout = DegradedTimeout
	}
	if err := p.WaitForElement(sortDropdown, timeout); err != nil {
		log.Printf("Sort dropdown not visible: %v", err)
		return false
	}
	return p.IsElementVisible(sortDropdown)
}

// ClickSortDropdown opens the dropdown; failures are only logged
func (p *ProductsPage) ClickSortDropdown(ctx context.Context) {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		log.Printf("Error clicking sort dropdown: %v", err)
		return
	}
	if err := p.Click(sortDropdown); err != nil {
		log.Printf("Error clicking sort dropdown: %v", err)
	}
}

// SortOptions returns the trimmed dropdown labels
func (p *ProductsPage) SortOptions(ctx context.Context) []string {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		log.Printf("Could not read sort options: %v", err)
		return []string{}
	}
	texts := p.Texts(sortDropdown + " option")
	options := make([]string, 0, len(texts))
	for _, t := range texts {
		options = append(options, strings.TrimSpace(t))
	}
	return options
}

// SortProductsBy selects the given dropdown label. Unknown labels fail before
// the page is touched. A dialog raised by the sort is captured for
// LastPopupMessage. For the degraded user it also waits until the dropdown
// shows the new label.
func (p *ProductsPage) SortProductsBy(ctx context.Context, option string, isPerformanceUser bool) error {
	value, err := ResolveSortOption(option)
	if err != nil {
		return err
	}

	if err := p.WaitForPageLoad(ctx, false); err != nil {
		return err
	}

	p.dialogs.Arm()
	if err := p.Click(sortDropdown); err != nil {
		return fmt.Errorf("failed to open sort dropdown: %w", err)
	}
	if _, err := p.page.Locator(sortDropdownContainer).SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	}); err != nil {
		return fmt.Errorf("failed to select %s: %w", option, err)
	}

	if err := Pause(ctx, DialogWait); err != nil {
		return err
	}
	if !isPerformanceUser {
		return nil
	}

	if err := Pause(ctx, DegradedSettleWait); err != nil {
		return err
	}
	return p.waitForSortOptionSelected(ctx, option)
}

func (p *ProductsPage) waitForSortOptionSelected(ctx context.Context, option string) error {
	policy := retry.Policy{
		Attempts: selectionPollAttempts,
		Delay:    SelectionPollDelay,
		Escalate: retry.Constant,
	}
	_, err := retry.Until(ctx, policy, func(ctx context.Context) (bool, error) {
		current, err := p.CurrentSortOption()
		if err != nil {
			return false, err
		}
		log.Printf("Current sort option: %s", current)
		return current == option, nil
	})
	if err != nil {
		return fmt.Errorf("sort option %q was not applied: %w", option, err)
	}
	return nil
}

// CurrentSortOption returns the label the dropdown currently shows
func (p *ProductsPage) CurrentSortOption() (string, error) {
	text, err := p.page.Locator(activeSortOption).InnerText()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// LastPopupMessage returns the dialog captured by the latest sort, "" if none
func (p *ProductsPage) LastPopupMessage() string {
	message, _ := p.dialogs.Peek()
	return message
}

// VerifyPopupMessage reports whether the latest sort raised the expected dialog
func (p *ProductsPage) VerifyPopupMessage(expected string) bool {
	return p.LastPopupMessage() == expected
}

// ProductNames returns the rendered product names in page order
func (p *ProductsPage) ProductNames(ctx context.Context) []string {
	if err := p.WaitForPageLoad(ctx, false); err != nil {
		log.Printf("Could not read product names: %v", err)
		return []string{}
	}
	return p.Texts(productName)
}

// ProductPrices returns the rendered prices in page order
func (p *ProductsPage) ProductPrices() []float64 {
	return ParsePrices(p.Texts(productPrice))
}

// VerifyAlphabeticalSort reports whether the names are in collated order,
// retrying while the page catches up
func (p *ProductsPage) VerifyAlphabeticalSort(ctx context.Context, ascending, isPerformanceUser bool) bool {
	return p.verify(ctx, isPerformanceUser, func() (bool, error) {
		names := p.Texts(productName)
		if len(names) == 0 {
			return false, errNoProducts
		}
		return IsSortedByName(names, ascending), nil
	})
}

// VerifyPriceSort reports whether the prices are in numeric order,
// retrying while the page catches up
func (p *ProductsPage) VerifyPriceSort(ctx context.Context, ascending, isPerformanceUser bool) bool {
	return p.verify(ctx, isPerformanceUser, func() (bool, error) {
		prices := p.ProductPrices()
		if len(prices) == 0 {
			return false, errNoProducts
		}
		return IsSortedByPrice(prices, ascending), nil
	})
}

func (p *ProductsPage) verify(ctx context.Context, isPerformanceUser bool, check func() (bool, error)) bool {
	var reload func(context.Context) error
	if isPerformanceUser {
		reload = func(ctx context.Context) error {
			if _, err := p.page.Reload(); err != nil {
				return err
			}
			return p.WaitForPageLoad(ctx, true)
		}
	}

	ok, err := retry.Until(ctx, VerifyPolicy(isPerformanceUser, reload), func(ctx context.Context) (bool, error) {
		return check()
	})
	if err != nil {
		log.Printf("Sort verification failed: %v", err)
	}
	return ok
}

// VerifyPolicy is the retry budget for sort verification. The degraded user
// gets more attempts, longer waits and a reset between attempts.
func VerifyPolicy(isPerformanceUser bool, reset func(context.Context) error) retry.Policy {
	if !isPerformanceUser {
		return retry.Policy{
			Attempts: VerifyAttempts,
			Delay:    VerifyDelay,
			Escalate: retry.Linear,
		}
	}
	return retry.Policy{
		Attempts: DegradedVerifyAttempts,
		Delay:    DegradedDelay,
		Escalate: retry.Linear,
		Reset:    reset,
	}
}

// IsInventoryListVisible waits briefly for the inventory list
func (p *ProductsPage) IsInventoryListVisible(isPerformanceUser bool) bool {
	timeout := DefaultTimeout
	if isPerformanceUser {
		timeout = DegradedTimeout
	}
	if err := p.WaitForElement(inventoryList, timeout); err != nil {
		log.Printf("Error checking inventory list visibility: %v", err)
		return false
	}
	return p.IsElementVisible(inventoryList)
}

// CanViewProductDetails opens the first product, then returns to the inventory
func (p *ProductsPage) CanViewProductDetails(ctx context.Context, isPerformanceUser bool) bool {
	timeout := DefaultTimeout
	if isPerformanceUser {
		timeout = DegradedTimeout
	}

	if err := p.WaitForElement(productName, timeout); err != nil {
		log.Printf("Error checking product details: %v", err)
		return false
	}
	if err := p.Click(productName); err != nil {
		log.Printf("Error opening product details: %v", err)
		return false
	}
	if err := p.WaitForElement(backToProducts, DefaultTimeout); err != nil {
		log.Printf("Product details did not open: %v", err)
		return false
	}
	if err := p.Click(backToProducts); err != nil {
		log.Printf("Error returning to products: %v", err)
		return false
	}
	if err := p.WaitForPageLoad(ctx, isPerformanceUser); err != nil {
		log.Printf("Products did not reload: %v", err)
		return false
	}
	return true
}
