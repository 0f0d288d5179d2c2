package domain

// BookLevel is a single price+quantity entry in an order book.
type BookLevel struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// Notional returns the USD value resting at the level.
func (l BookLevel) Notional() float64 {
	return l.Price * l.Qty
}

// DepthSnapshot is a point-in-time order book read. Bids are ranked best
// (highest) first, asks best (lowest) first. Never cached across calls.
type DepthSnapshot struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// BidVolume sums the quantity resting on the bid side.
func (d *DepthSnapshot) BidVolume() float64 {
	var sum float64
	for _, l := range d.Bids {
		sum += l.Qty
	}
	return sum
}

// AskVolume sums the quantity resting on the ask side.
func (d *DepthSnapshot) AskVolume() float64 {
	var sum float64
	for _, l := range d.Asks {
		sum += l.Qty
	}
	return sum
}
