package sim

import "fmt"

const (
	DefaultInitialFunds     = 1000.0
	DefaultHistoryYears     = 3
	DefaultInitialDay       = 30
	DefaultSalaryPeriodDays = 30
)

// Config holds the game rules. Zero fields take their defaults; a zero
// SalaryAmount pays InitialFunds every period.
type Config struct {
	InitialFunds     float64 `json:"initial_funds" yaml:"initial_funds"`
	HistoryYears     int     `json:"history_years" yaml:"history_years"`
	InitialDay       int     `json:"initial_day" yaml:"initial_day"`
	SalaryPeriodDays int     `json:"salary_period_days" yaml:"salary_period_days"`
	SalaryAmount     float64 `json:"salary_amount" yaml:"salary_amount"`
}

// DefaultConfig returns the standard rules: 1000 to start, three years of
// history, play begins on day 30 and pays 1000 every 30 days.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.InitialFunds == 0 {
		c.InitialFunds = DefaultInitialFunds
	}
	if c.HistoryYears == 0 {
		c.HistoryYears = DefaultHistoryYears
	}
	if c.InitialDay == 0 {
		c.InitialDay = DefaultInitialDay
	}
	if c.SalaryPeriodDays == 0 {
		c.SalaryPeriodDays = DefaultSalaryPeriodDays
	}
	if c.SalaryAmount == 0 {
		c.SalaryAmount = c.InitialFunds
	}
	return c
}

// Validate rejects negative settings.
func (c Config) Validate() error {
	if c.InitialFunds < 0 {
		return fmt.Errorf("initial_funds must not be negative")
	}
	if c.HistoryYears < 0 {
		return fmt.Errorf("history_years must not be negative")
	}
	if c.InitialDay < 0 {
		return fmt.Errorf("initial_day must not be negative")
	}
	if c.SalaryPeriodDays < 0 {
		return fmt.Errorf("salary_period_days must not be negative")
	}
	if c.SalaryAmount < 0 {
		return fmt.Errorf("salary_amount must not be negative")
	}
	return nil
}
