package models

// Account — снимок счёта на начало скана. portfolio_value в течение
// прохода не меняем, бюджет на сделку считается от зафиксированного значения.
type Account struct {
	Status         string
	BuyingPower    float64
	PortfolioValue float64
}
