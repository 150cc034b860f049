package sim

// LedgerSnapshot is a serializable copy of one player's ledger.
type LedgerSnapshot struct {
	Player        string         `json:"player" yaml:"player"`
	Funds         float64        `json:"funds" yaml:"funds"`
	Holdings      map[string]int `json:"holdings" yaml:"holdings"`
	Day           int            `json:"simulated_day" yaml:"simulated_day"`
	LastSalaryDay int            `json:"last_salary_day" yaml:"last_salary_day"`
}

// Valuation is a player's worth at their current simulated day.
type Valuation struct {
	Day        int     `json:"simulated_day" yaml:"simulated_day"`
	Funds      float64 `json:"funds" yaml:"funds"`
	StockValue float64 `json:"stock_value" yaml:"stock_value"`
	TotalValue float64 `json:"total_value" yaml:"total_value"`
}
