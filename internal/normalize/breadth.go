package normalize

import (
	"encoding/json"

	"uct-dashboard/backend-go/internal/models"
)

// RawBreadth holds both shapes the engine has used for breadth: the public
// names (pct_above_50ma) and the names fetch_breadth emits (pct_above_50).
type RawBreadth struct {
	PctAbove50MA  *float64
	PctAbove50    *float64
	PctAbove200MA *float64
	PctAbove200   *float64
	Advancing     *float64
	Declining     *float64
	BreadthScore  *float64
}

// MarketState is the part of the engine state that breadth always reports,
// whatever the source of the percentages.
type MarketState struct {
	DistributionDays int
	Phase            string
}

const defaultBreadthScore = 50.0

func DecodeBreadth(raw json.RawMessage) RawBreadth {
	m, ok := object(raw)
	if !ok {
		return RawBreadth{}
	}
	return RawBreadth{
		PctAbove50MA:  numberField(m, "pct_above_50ma"),
		PctAbove50:    numberField(m, "pct_above_50"),
		PctAbove200MA: numberField(m, "pct_above_200ma"),
		PctAbove200:   numberField(m, "pct_above_200"),
		Advancing:     numberField(m, "advancing"),
		Declining:     numberField(m, "declining"),
		BreadthScore:  numberField(m, "breadth_score"),
	}
}

func Breadth(raw RawBreadth, st MarketState) models.Breadth {
	return models.Breadth{
		PctAbove50MA:     preferred(raw.PctAbove50MA, raw.PctAbove50, 0),
		PctAbove200MA:    preferred(raw.PctAbove200MA, raw.PctAbove200, 0),
		Advancing:        int(orDefault(raw.Advancing, 0)),
		Declining:        int(orDefault(raw.Declining, 0)),
		BreadthScore:     orDefault(raw.BreadthScore, defaultBreadthScore),
		DistributionDays: st.DistributionDays,
		MarketPhase:      st.phase(),
	}
}

// EmptyBreadth is served when no source has breadth data.
func EmptyBreadth(st MarketState, reason string) models.Breadth {
	return models.Breadth{
		DistributionDays: st.DistributionDays,
		MarketPhase:      st.phase(),
		Error:            reason,
	}
}

func (st MarketState) phase() string {
	if st.Phase == "" {
		return "Unknown"
	}
	return st.Phase
}

func preferred(normalized, raw *float64, def float64) float64 {
	if normalized != nil {
		return *normalized
	}
	return orDefault(raw, def)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
