package pages

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

const (
	searchInput     = `[data-testid="search-input"]`
	bookCards       = `[data-testid^="book-card"]`
	bookTitle       = `[data-testid="book-title"]`
	bookAuthor      = `[data-testid="book-author"]`
	bookCategory    = `[data-testid="book-category"]`
	bookPrice       = `[data-testid="book-price"]`
	categoryItems   = `[data-testid^="category-item"]`
	paginator       = `[data-testid="paginator"]`
	previousPage    = `[data-testid="paginator"] [aria-label="Previous page"]`
	nextPage        = `[data-testid="paginator"] [aria-label="Next page"]`
	errorMessage    = `[data-testid="error-message"]`
	noResults       = `[data-testid="no-results"]`
	bookDetails     = `[data-testid="book-details"]`
	detailsBackLink = `[data-testid="back-button"]`
)

// BookCard is what a rendered catalog card shows
type BookCard struct {
	Title    string
	Author   string
	Category string
	Price    string
}

// BookListPage is the book store catalog
type BookListPage struct {
	BasePage
	baseURL string
}

// NewBookListPage creates a BookListPage for the store served at baseURL
func NewBookListPage(page playwright.Page, baseURL string) *BookListPage {
	return &BookListPage{BasePage: NewBasePage(page), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Open loads /books and waits for the page to settle
func (p *BookListPage) Open() error {
	if _, err := p.page.Goto(p.baseURL+"/books", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("failed to open book list: %w", err)
	}
	return nil
}

// Search types term into the search box and submits it with Enter
func (p *BookListPage) Search(term string) error {
	if err := p.page.Locator(searchInput).Fill(term); err != nil {
		return fmt.Errorf("failed to fill search: %w", err)
	}
	if err := p.page.Keyboard().Press("Enter"); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	return p.page.WaitForURL("**/books?q=**", playwright.PageWaitForURLOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
}

// NextPage clicks the next page button and waits for that page
func (p *BookListPage) NextPage(page int) error {
	if err := p.Click(nextPage); err != nil {
		return fmt.Errorf("failed to click next page: %w", err)
	}
	return p.page.WaitForURL(fmt.Sprintf("**page=%d**", page), playwright.PageWaitForURLOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
}

// CardCount returns the number of book cards shown
func (p *BookListPage) CardCount() int {
	return p.Count(bookCards)
}

// Cards reads every card in page order
func (p *BookListPage) Cards() ([]BookCard, error) {
	cards := p.page.Locator(bookCards)
	n, err := cards.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	result := make([]BookCard, 0, n)
	for i := 0; i < n; i++ {
		card := cards.Nth(i)
		var c BookCard
		for _, f := range []struct {
			selector string
			dest     *string
		}{
			{bookTitle, &c.Title},
			{bookAuthor, &c.Author},
			{bookCategory, &c.Category},
			{bookPrice, &c.Price},
		} {
			text, err := card.Locator(f.selector).TextContent()
			if err != nil {
				return nil, fmt.Errorf("failed to read card %d: %w", i, err)
			}
			*f.dest = strings.TrimSpace(text)
		}
		result = append(result, c)
	}
	return result, nil
}

// CategoryCount returns the number of category links, excluding "All"
func (p *BookListPage) CategoryCount() int {
	return p.Count(categoryItems)
}

// IsPaginatorVisible reports whether the paginator is shown
func (p *BookListPage) IsPaginatorVisible() bool {
	return p.IsElementVisible(paginator)
}

// IsNextPageDisabled reports whether the next page button is disabled
func (p *BookListPage) IsNextPageDisabled() bool {
	return p.isDisabled(nextPage)
}

// IsPreviousPageDisabled reports whether the previous page button is disabled
func (p *BookListPage) IsPreviousPageDisabled() bool {
	return p.isDisabled(previousPage)
}

func (p *BookListPage) isDisabled(selector string) bool {
	disabled, err := p.page.Locator(selector).IsDisabled()
	if err != nil {
		return false
	}
	return disabled
}

// ErrorMessage returns the error banner text, "" when there is none
func (p *BookListPage) ErrorMessage() string {
	return strings.TrimSpace(p.Text(errorMessage))
}

// NoResultsMessage returns the empty state text, "" when there is none
func (p *BookListPage) NoResultsMessage() string {
	return strings.TrimSpace(p.Text(noResults))
}

// BookDetailsPage is the page for a single book
type BookDetailsPage struct {
	BasePage
	baseURL string
}

// NewBookDetailsPage creates a BookDetailsPage for the store served at baseURL
func NewBookDetailsPage(page playwright.Page, baseURL string) *BookDetailsPage {
	return &BookDetailsPage{BasePage: NewBasePage(page), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Open loads the details page of the given book
func (p *BookDetailsPage) Open(id int) error {
	if _, err := p.page.Goto(fmt.Sprintf("%s/books/%d", p.baseURL, id), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open book %d: %w", id, err)
	}
	return nil
}

// IsShown reports whether book details are rendered
func (p *BookDetailsPage) IsShown() bool {
	return p.IsElementVisible(bookDetails)
}

// Book reads the rendered details
func (p *BookDetailsPage) Book() BookCard {
	scoped := func(selector string) string {
		return strings.TrimSpace(p.Text(bookDetails + " " + selector))
	}
	return BookCard{
		Title:    scoped(bookTitle),
		Author:   scoped(bookAuthor),
		Category: scoped(bookCategory),
		Price:    scoped(bookPrice),
	}
}

// ErrorMessage returns the error banner text, "" when there is none
func (p *BookDetailsPage) ErrorMessage() string {
	return strings.TrimSpace(p.Text(errorMessage))
}

// Back follows the back link to the catalog
func (p *BookDetailsPage) Back() error {
	if err := p.Click(detailsBackLink); err != nil {
		return fmt.Errorf("failed to go back: %w", err)
	}
	return p.page.WaitForURL("**/books", playwright.PageWaitForURLOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
}
