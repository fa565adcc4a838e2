package models

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortText sorts values in place by English collation, descending when asked.
// A collator is not safe for concurrent use, so one is built per call.
func SortText(values []string, ascending bool) {
	c := collate.New(language.English)
	sort.SliceStable(values, func(i, j int) bool {
		if ascending {
			return c.CompareString(values[i], values[j]) < 0
		}
		return c.CompareString(values[i], values[j]) > 0
	})
}

// Categories returns the distinct non-blank categories of the books, collated
func Categories(books []Book) []string {
	seen := make(map[string]struct{}, len(books))
	categories := make([]string, 0)
	for _, b := range books {
		if strings.TrimSpace(b.Category) == "" {
			continue
		}
		if _, ok := seen[b.Category]; ok {
			continue
		}
		seen[b.Category] = struct{}{}
		categories = append(categories, b.Category)
	}
	SortText(categories, true)
	return categories
}
