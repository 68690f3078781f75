package normalize

import (
	"encoding/json"
	"math"

	"uct-dashboard/backend-go/internal/models"
)

const (
	HourBMO = "bmo"
	HourAMC = "amc"

	EarningsBucketCap = 8
)

// RawEarning is one earnings-calendar row, from the engine or a live source.
type RawEarning struct {
	Symbol      string
	Hour        string
	EPSActual   *float64
	EPSEstimate *float64
	RevActual   *float64
	RevEstimate *float64
}

// DecodeEarningRows reads a flat list of rows carrying their own "hour".
func DecodeEarningRows(raw json.RawMessage) []RawEarning {
	items, ok := list(raw)
	if !ok {
		return nil
	}
	out := make([]RawEarning, 0, len(items))
	for _, it := range items {
		m, ok := object(it)
		if !ok {
			continue
		}
		hour, _ := stringField(m, "hour")
		out = append(out, RawEarning{
			Symbol:      firstString(m, "symbol", "sym"),
			Hour:        hour,
			EPSActual:   numberField(m, "eps_actual"),
			EPSEstimate: numberField(m, "eps_estimate"),
			RevActual:   numberField(m, "rev_actual"),
			RevEstimate: numberField(m, "rev_estimate"),
		})
	}
	return out
}

// DecodeEarningBuckets reads {"bmo": [...], "amc": [...]} and tags each row
// with the bucket it came from.
func DecodeEarningBuckets(raw json.RawMessage) []RawEarning {
	m, ok := object(raw)
	if !ok {
		return nil
	}
	var out []RawEarning
	for _, hour := range []string{HourBMO, HourAMC} {
		for _, row := range DecodeEarningRows(m[hour]) {
			row.Hour = hour
			out = append(out, row)
		}
	}
	return out
}

// EarningsView reads earnings already in the public {bmo, amc} shape, as
// the engine keeps them in its state file. It reports false unless raw is an
// object with a "bmo" key that decodes into that shape.
func EarningsView(raw json.RawMessage) (models.Earnings, bool) {
	m, ok := object(raw)
	if !ok {
		return models.Earnings{}, false
	}
	if _, ok := m[HourBMO]; !ok {
		return models.Earnings{}, false
	}
	var out models.Earnings
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.Earnings{}, false
	}
	if out.BMO == nil {
		out.BMO = []models.EarningsEntry{}
	}
	if out.AMC == nil {
		out.AMC = []models.EarningsEntry{}
	}
	return out, true
}

func Earnings(rows []RawEarning) models.Earnings {
	out := models.Earnings{BMO: []models.EarningsEntry{}, AMC: []models.EarningsEntry{}}
	for _, r := range rows {
		entry := models.EarningsEntry{
			Sym:            r.Symbol,
			ReportedEPS:    r.EPSActual,
			EPSEstimate:    r.EPSEstimate,
			SurprisePct:    SurprisePct(r.EPSActual, r.EPSEstimate),
			RevEstimate:    r.RevEstimate,
			RevActual:      r.RevActual,
			RevSurprisePct: SurprisePct(r.RevActual, r.RevEstimate),
			Verdict:        Verdict(r.EPSActual, r.EPSEstimate),
		}
		if r.Hour == HourBMO {
			if len(out.BMO) < EarningsBucketCap {
				out.BMO = append(out.BMO, entry)
			}
		} else if len(out.AMC) < EarningsBucketCap {
			out.AMC = append(out.AMC, entry)
		}
	}
	return out
}

// SurprisePct is (actual-estimate)/|estimate| as a signed one-decimal
// percent. It is nil when either side is missing or the estimate is zero.
func SurprisePct(actual, estimate *float64) *string {
	if actual == nil || estimate == nil || *estimate == 0 {
		return nil
	}
	pct := (*actual - *estimate) / math.Abs(*estimate) * 100
	s := SignedPct(pct, 1)
	return &s
}

func Verdict(actual, estimate *float64) string {
	if actual == nil || estimate == nil {
		return "Pending"
	}
	if *actual >= *estimate {
		return "Beat"
	}
	return "Miss"
}
