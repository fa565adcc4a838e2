package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/themizzi/bookstore/internal/models"
)

// ErrInvalidSortOption is returned for a label missing from the sort dropdown
var ErrInvalidSortOption = errors.New("invalid sort option")

var errNoProducts = errors.New("no products rendered")

// Sort dropdown labels
const (
	SortNameAsc   = "Name (A to Z)"
	SortNameDesc  = "Name (Z to A)"
	SortPriceAsc  = "Price (low to high)"
	SortPriceDesc = "Price (high to low)"
)

var sortValues = map[string]string{
	SortNameAsc:   "az",
	SortNameDesc:  "za",
	SortPriceAsc:  "lohi",
	SortPriceDesc: "hilo",
}

// SortLabels lists the dropdown labels in display order
func SortLabels() []string {
	return []string{SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc}
}

// ResolveSortOption maps a dropdown label to its option value
func ResolveSortOption(label string) (string, error) {
	value, ok := sortValues[label]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidSortOption, label)
	}
	return value, nil
}

// IsSortedByName reports whether names equal their collated sort in the given direction
func IsSortedByName(names []string, ascending bool) bool {
	sorted := append([]string(nil), names...)
	models.SortText(sorted, ascending)
	return equalStrings(names, sorted)
}

// IsSortedByPrice reports whether prices equal their numeric sort in the given direction
func IsSortedByPrice(prices []float64, ascending bool) bool {
	sorted := append([]float64(nil), prices...)
	if ascending {
		sort.Float64s(sorted)
	} else {
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	}
	for i := range prices {
		if prices[i] != sorted[i] {
			return false
		}
	}
	return true
}

// ParsePrice reads a rendered price such as "$29.99"; unreadable text is 0
func ParsePrice(text string) float64 {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// ParsePrices converts every rendered price with ParsePrice
func ParsePrices(texts []string) []float64 {
	prices := make([]float64, len(texts))
	for i, t := range texts {
		prices[i] = ParsePrice(t)
	}
	return prices
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
