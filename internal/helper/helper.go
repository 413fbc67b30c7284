package helper

import "math"

// RoundQty округляет количество до 5 знаков: столько Alpaca принимает для
// дробных заявок. Эпсилон прикрывает двоичное представление на границе.
func RoundQty(qty float64) float64 {
	return math.Round(qty*1e5+1e-9) / 1e5
}
