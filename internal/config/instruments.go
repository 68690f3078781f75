package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"uct-dashboard/backend-go/internal/models"
)

// Future maps a display label to the symbol used by the secondary quote source.
type Future struct {
	Label  string `yaml:"label"`
	Symbol string `yaml:"symbol"`
}

// Instruments lists what the snapshot strip shows and the trader roster.
type Instruments struct {
	ETFs    []string        `yaml:"etfs"`
	Futures []Future        `yaml:"futures"`
	Traders []models.Trader `yaml:"traders"`
}

func DefaultInstruments() Instruments {
	return Instruments{
		ETFs: []string{"QQQ", "SPY", "IWM", "DIA", "VIX"},
		Futures: []Future{
			{Label: "NQ", Symbol: "NQ=F"},
			{Label: "ES", Symbol: "ES=F"},
			{Label: "RTY", Symbol: "RTY=F"},
			{Label: "BTC", Symbol: "BTC-USD"},
		},
		Traders: []models.Trader{
			{ID: "tsdr", Name: "TSDR", Color: "#3cb868", Tickers: []string{"NVDA", "META", "GOOGL", "AMZN", "MSFT", "AAPL", "AMD", "TSM", "AVGO", "ARM"}},
			{ID: "bracco", Name: "Bracco", Color: "#e74c3c", Tickers: []string{"SMCI", "PLTR", "IONQ", "RGTI", "ACHR", "JOBY", "RKLB", "LUNR", "TDW", "PRFX"}},
			{ID: "qullamaggie", Name: "Qullamaggie", Color: "#6ba3be", Tickers: []string{"CELH", "AXON", "ANET", "TTD", "MNDY", "DUOL", "IOT", "SMAR", "GTLB", "DDOG"}},
			{ID: "manrav", Name: "Manrav", Color: "#c9a84c", Tickers: []string{"CRS", "FIX", "EQIX", "MCK", "TOL", "GLW", "STX", "MU", "SNDK", "LITE"}},
		},
	}
}

// LoadInstruments overlays the YAML file at path on the defaults. Sections
// missing from the file keep their default value. An empty path returns the
// defaults unchanged.
func LoadInstruments(path string) (Instruments, error) {
	inst := DefaultInstruments()
	if path == "" {
		return inst, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return inst, fmt.Errorf("cannot read instruments file: %w", err)
	}
	var file Instruments
	if err := yaml.Unmarshal(data, &file); err != nil {
		return inst, fmt.Errorf("cannot parse instruments YAML: %w", err)
	}
	if len(file.ETFs) > 0 {
		inst.ETFs = file.ETFs
	}
	if len(file.Futures) > 0 {
		inst.Futures = file.Futures
	}
	if len(file.Traders) > 0 {
		inst.Traders = file.Traders
	}
	return inst, nil
}
