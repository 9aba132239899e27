package wager

// Performance holds the starting and ending value of an investment.
type Performance struct {
	Start, End Money
}

func NewPerformance(start, end Money) Performance {
	return Performance{Start: start, End: end}
}

// Change returns the gain or loss.
func (p Performance) Change() Money {
	return p.End.Sub(p.Start)
}

// Percent returns the return in percent, or 0 when the starting value is zero.
func (p Performance) Percent() Percent {
	if p.Start.IsZero() {
		return 0
	}
	return Percent(p.Change().Decimal().Div(p.Start.Decimal()).Shift(2).InexactFloat64())
}
