package core

import "sort"

// EntryKind distinguishes direct expenses from installment charges in
// the merged stream.
type EntryKind string

const (
	EntryDirect      EntryKind = "expense"
	EntryInstallment EntryKind = "installment"
)

// LedgerEntry is one element of the unified expense stream consumed by
// the calendar, dashboard, and report computations.
type LedgerEntry struct {
	Kind        EntryKind
	Date        Date
	Description string
	Amount      Money
	Category    Category
}

// MergeStream folds direct expenses and installment entries into one
// chronological stream. Same-day ties keep expenses ahead of
// installment entries.
func MergeStream(expenses []Expense, entries []InstallmentEntry) []LedgerEntry {
	stream := make([]LedgerEntry, 0, len(expenses)+len(entries))
	for _, e := range expenses {
		stream = append(stream, LedgerEntry{
			Kind:        EntryDirect,
			Date:        e.OccurredOn,
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.Category,
		})
	}
	for _, ie := range entries {
		stream = append(stream, LedgerEntry{
			Kind:        EntryInstallment,
			Date:        ie.DueOn,
			Description: ie.Description,
			Amount:      ie.Amount,
			Category:    ie.Category,
		})
	}
	sort.SliceStable(stream, func(i, j int) bool {
		return stream[i].Date.Before(stream[j].Date.Time)
	})
	return stream
}
