package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order — принятая брокером рыночная заявка. Дальше за ней не следим.
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Qty       float64
	Status    string
	CreatedAt time.Time
}
