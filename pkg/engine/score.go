package engine

// Tier is the qualitative band of a compliance percentage
type Tier string

const (
	TierGood Tier = "Good"
	TierFair Tier = "Fair"
	TierPoor Tier = "Poor"
)

// Color returns the presentation color renderers use for the tier.
func (t Tier) Color() string {
	switch t {
	case TierGood:
		return "#28a745"
	case TierFair:
		return "#ffc107"
	default:
		return "#dc3545"
	}
}

// TierFor maps a percentage to its tier: >=90 Good, >=70 Fair, otherwise Poor.
func TierFor(percentage float64) Tier {
	switch {
	case percentage >= 90:
		return TierGood
	case percentage >= 70:
		return TierFair
	default:
		return TierPoor
	}
}

// Score is a framework's compliance score
type Score struct {
	Framework        string  `json:"framework"`
	TotalControls    int     `json:"total_controls"`
	AffectedControls int     `json:"affected_controls"`
	Percentage       float64 `json:"percentage"`
	Tier             Tier    `json:"tier"`
}

// AffectedPercentage is the share of controls with findings, 0 when the
// framework declares no controls.
func (s Score) AffectedPercentage() float64 {
	if s.TotalControls == 0 {
		return 0
	}
	return float64(s.AffectedControls) / float64(s.TotalControls) * 100
}

// ScoreOf computes the compliance score of an aggregation. ok is false when
// the framework declares no controls; such frameworks have nothing to score.
func ScoreOf(agg *Aggregation) (s Score, ok bool) {
	s = Score{
		Framework:        agg.Framework.Name,
		TotalControls:    agg.TotalControls(),
		AffectedControls: agg.AffectedControls(),
	}
	if s.TotalControls == 0 {
		s.Tier = TierFor(0)
		return s, false
	}
	pct := 100 * (1 - float64(s.AffectedControls)/float64(s.TotalControls))
	s.Percentage = clamp(pct, 0, 100)
	s.Tier = TierFor(s.Percentage)
	return s, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
