package core

// Entry is any record that carries an amount and a date. Expense and
// Contribution both satisfy it, so the aggregate functions below are written
// once instead of per record kind.
type Entry interface {
	EntryAmount() Money
	EntryDate() Date
}

func (e Expense) EntryAmount() Money      { return e.Amount }
func (e Expense) EntryDate() Date         { return e.Date }
func (c Contribution) EntryAmount() Money { return c.Amount }
func (c Contribution) EntryDate() Date    { return c.Date }

// TotalOf sums the amounts of all records. An empty sequence totals zero.
func TotalOf[T Entry](records []T) Money {
	var total Money
	for _, r := range records {
		total = total.Add(r.EntryAmount())
	}
	return total
}

// FilterMonth returns the records whose date falls in the same calendar month
// and year as ref, preserving the original order. "This month" is a calendar
// comparison by wall-clock date components, never a rolling 30-day window.
func FilterMonth[T Entry](records []T, ref Date) []T {
	var out []T
	for _, r := range records {
		if r.EntryDate().SameMonth(ref.Time) {
			out = append(out, r)
		}
	}
	return out
}

// Balance is total contributions minus total expenses. A negative result
// means the pool is in deficit.
func Balance(contributions []Contribution, expenses []Expense) Money {
	return TotalOf(contributions).Sub(TotalOf(expenses))
}
