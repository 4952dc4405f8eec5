package models

// Cost is an immutable value object: a non-negative amount in a unit such
// as "points" or "hours". Two costs are equal when amount and unit match.
type Cost struct {
	Amount int64  `json:"amount" db:"cost_amount"`
	Unit   string `json:"unit" db:"cost_unit"`
}

// NewCost validates and builds a Cost.
func NewCost(amount int64, unit string) (Cost, error) {
	if amount < 0 {
		return Cost{}, &NegativeCostError{Amount: amount}
	}
	return Cost{Amount: amount, Unit: unit}, nil
}

// Add combines two costs by summing their amounts. Units must match.
func (c Cost) Add(other Cost) (Cost, error) {
	if c.Unit != other.Unit {
		return Cost{}, &UnitMismatchError{Left: c.Unit, Right: other.Unit}
	}
	return Cost{Amount: c.Amount + other.Amount, Unit: c.Unit}, nil
}
