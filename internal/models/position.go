package models

// Position — открытая позиция у брокера. Не больше одной на символ.
type Position struct {
	Symbol        string
	Qty           float64 // может быть дробным
	AvgEntryPrice float64
}
