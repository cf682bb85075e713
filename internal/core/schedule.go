package core

import "fmt"

// MonthlyAmount returns round(total / count) over centavos, half-up.
func MonthlyAmount(total Money, count int) Money {
	return Money{Cents: roundDiv(total.Cents, int64(count))}
}

// BuildSchedule expands an installment plan into its derived monthly
// entries: one per consecutive calendar month starting at the plan's
// start month, each on the start day-of-month clamped to shorter
// months. Every entry carries the monthly amount except the last, which
// absorbs the rounding remainder so the entries sum to the plan total
// exactly.
func BuildSchedule(p InstallmentPlan) ([]InstallmentEntry, error) {
	if p.Total.Cents <= 0 {
		return nil, fmt.Errorf("total amount must be positive: %w", ErrInvalidPlan)
	}
	if p.Count < MinInstallments || p.Count > MaxInstallments {
		return nil, fmt.Errorf("installment count %d outside %d..%d: %w",
			p.Count, MinInstallments, MaxInstallments, ErrInvalidPlan)
	}

	monthly := roundDiv(p.Total.Cents, int64(p.Count))
	entries := make([]InstallmentEntry, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		amount := monthly
		if i == p.Count-1 {
			amount = p.Total.Cents - monthly*int64(p.Count-1)
		}
		entries = append(entries, InstallmentEntry{
			PlanID:      p.ID,
			UserID:      p.UserID,
			Seq:         i + 1,
			Description: fmt.Sprintf("%s (%d/%d)", p.Description, i+1, p.Count),
			Amount:      Money{Cents: amount},
			Category:    p.Category,
			DueOn:       p.StartsOn.AddMonthsClamped(i),
		})
	}
	return entries, nil
}
