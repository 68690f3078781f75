package services

import (
	"encoding/json"
	"os"

	"uct-dashboard/backend-go/internal/normalize"
)

// EngineState is the morning wire engine's state file. It carries market
// regime counters and, on machines that run the engine, the *_data
// sections the engine last produced.
type EngineState struct {
	fields map[string]json.RawMessage
}

type StateReader struct {
	path string
}

func NewStateReader(path string) *StateReader {
	return &StateReader{path: path}
}

// Load reads the state file on every call. A missing or malformed file is an
// empty state.
func (r *StateReader) Load() EngineState {
	if r == nil || r.path == "" {
		return EngineState{}
	}
	b, err := os.ReadFile(r.path)
	if err != nil {
		return EngineState{}
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(b, &m) != nil {
		return EngineState{}
	}
	return EngineState{fields: m}
}

func (s EngineState) Field(key string) json.RawMessage {
	return s.fields[key]
}

func (s EngineState) Market() normalize.MarketState {
	var st normalize.MarketState
	var days float64
	if json.Unmarshal(s.fields["distribution_days_qqq"], &days) == nil {
		st.DistributionDays = int(days)
	}
	st.Phase = rawString(s.fields["market_phase"])
	return st
}
