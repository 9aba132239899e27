package wager

import "fmt"

// Percent is a signed percentage: 1.5 means +1.5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

// SignedString formats the percentage with an explicit sign, like +1.23%.
func (p Percent) SignedString() string {
	return fmt.Sprintf("%+.2f%%", p)
}

// Change returns the percentage change from 'from' to 'to', or 0 when from is 0.
func Change(from, to float64) Percent {
	if from == 0 {
		return 0
	}
	return Percent((to - from) / from * 100)
}
