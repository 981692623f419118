package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Totals sums the expenses and their per-category subtotals.
// Categories are ranked by subtotal descending; ties keep first-appearance order.
func Totals(expenses []Expense) (Money, []CategoryAmount) {
	var total Money
	index := make(map[string]int)
	var byCategory []CategoryAmount

	for _, e := range expenses {
		total = total.Add(e.Amount)
		i, ok := index[e.Category]
		if !ok {
			i = len(byCategory)
			index[e.Category] = i
			byCategory = append(byCategory, CategoryAmount{Name: e.Category})
		}
		byCategory[i].Amount = byCategory[i].Amount.Add(e.Amount)
	}

	sort.SliceStable(byCategory, func(i, j int) bool {
		return byCategory[i].Amount.Cents > byCategory[j].Amount.Cents
	})
	return total, byCategory
}
