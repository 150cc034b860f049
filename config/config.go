package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradegame/market"
	"github.com/rustyeddy/tradegame/sim"
)

// Config represents a complete game setup
type Config struct {
	Game        GameConfig         `json:"game" yaml:"game"`
	Instruments []InstrumentConfig `json:"instruments" yaml:"instruments"`
	Data        DataConfig         `json:"data" yaml:"data"`
	Journal     JournalConfig      `json:"journal" yaml:"journal"`
	Log         LogConfig          `json:"log" yaml:"log"`
	Server      ServerConfig       `json:"server" yaml:"server"`
}

// GameConfig holds the player name and the rules handed to the engine.
// Zero values take the engine defaults.
type GameConfig struct {
	Player           string  `json:"player" yaml:"player"`
	InitialFunds     float64 `json:"initial_funds,omitempty" yaml:"initial_funds,omitempty"`
	HistoryYears     int     `json:"history_years,omitempty" yaml:"history_years,omitempty"`
	InitialDay       int     `json:"initial_day,omitempty" yaml:"initial_day,omitempty"`
	SalaryPeriodDays int     `json:"salary_period_days,omitempty" yaml:"salary_period_days,omitempty"`
	SalaryAmount     float64 `json:"salary_amount,omitempty" yaml:"salary_amount,omitempty"`
}

// InstrumentConfig maps a display name to the symbol the data source knows
// it by. An empty symbol means the name is the symbol.
type InstrumentConfig struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

const (
	SourceCSV    = "csv"
	SourceHTTP   = "http"
	SourceStatic = "static"
)

// DataConfig selects where price history comes from
type DataConfig struct {
	Source            string  `json:"source" yaml:"source"` // "csv", "http" or "static"
	Dir               string  `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL           string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	RequestsPerMinute int     `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	Timeout           string  `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "30s"
	RelativeBase      float64 `json:"relative_base,omitempty" yaml:"relative_base,omitempty"`
}

// ParseTimeout converts Timeout to a duration. Empty means zero.
func (d DataConfig) ParseTimeout() (time.Duration, error) {
	if d.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(d.Timeout)
}

const (
	JournalNone   = "none"
	JournalCSV    = "csv"
	JournalSQLite = "sqlite"
)

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	EquityFile       string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = &Config{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Game.Player == "" {
		return fmt.Errorf("game.player is required")
	}
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	if _, err := c.Roster(); err != nil {
		return fmt.Errorf("instruments: %w", err)
	}

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir required for csv source")
		}
	case SourceHTTP, SourceStatic:
	default:
		return fmt.Errorf("data.source must be 'csv', 'http' or 'static'")
	}
	if c.Data.RequestsPerMinute < 0 {
		return fmt.Errorf("data.requests_per_minute must not be negative")
	}
	if c.Data.RelativeBase < 0 {
		return fmt.Errorf("data.relative_base must not be negative")
	}
	if _, err := c.Data.ParseTimeout(); err != nil {
		return fmt.Errorf("data.timeout: %w", err)
	}

	switch c.Journal.Type {
	case "", JournalNone:
	case JournalCSV:
		if c.Journal.TransactionsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal transactions_file and equity_file required for CSV type")
		}
	case JournalSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Roster builds the instrument table in the configured order.
func (c *Config) Roster() (market.Roster, error) {
	ins := make([]market.Instrument, 0, len(c.Instruments))
	for _, i := range c.Instruments {
		ins = append(ins, market.Instrument{Name: i.Name, Symbol: i.Symbol})
	}
	return market.NewRoster(ins...)
}

// SimConfig returns the engine rules.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		InitialFunds:     c.Game.InitialFunds,
		HistoryYears:     c.Game.HistoryYears,
		InitialDay:       c.Game.InitialDay,
		SalaryPeriodDays: c.Game.SalaryPeriodDays,
		SalaryAmount:     c.Game.SalaryAmount,
	}
}

// Default returns a configuration that plays the stock roster from CSV
// files in ./data, journaling to SQLite. Prices are rebased so every
// instrument opens at 100.
func Default() *Config {
	def := sim.DefaultConfig()

	var ins []InstrumentConfig
	for _, i := range market.DefaultInstruments() {
		ins = append(ins, InstrumentConfig{Name: i.Name, Symbol: i.Symbol})
	}

	return &Config{
		Game: GameConfig{
			Player:           "player",
			InitialFunds:     def.InitialFunds,
			HistoryYears:     def.HistoryYears,
			InitialDay:       def.InitialDay,
			SalaryPeriodDays: def.SalaryPeriodDays,
			SalaryAmount:     def.SalaryAmount,
		},
		Instruments: ins,
		Data: DataConfig{
			Source:            SourceCSV,
			Dir:               "./data",
			RequestsPerMinute: 30,
			Timeout:           "30s",
			RelativeBase:      100,
		},
		Journal: JournalConfig{
			Type:   JournalSQLite,
			DBPath: "./tradegame.sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
