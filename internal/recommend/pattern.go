package recommend

import (
	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/d2r"
)

// Quadrant cutoffs for the study-pattern insight.
const (
	patternConCutoff = 100.0
	patternPctCutoff = 75.0
)

// Pattern is the profile insight combining the concentration test with the
// recent attention window.
type Pattern struct {
	Key      string `json:"key"`
	Strategy string `json:"strategy"`
}

// DetectPattern places the learner in one of four quadrants from CON and the
// average attention percentage, with explicit markers when either side has no
// data yet. dc is nil when the learner has never taken the concentration test;
// attn.Sessions is zero when no sessions were recorded.
func DetectPattern(dc *d2r.Context, attn attention.Summary) Pattern {
	if dc == nil && attn.Sessions == 0 {
		return Pattern{
			Key:      "no_data",
			Strategy: "Take the concentration test and watch a few resources so we can profile your study habits.",
		}
	}
	if dc == nil {
		return Pattern{
			Key:      "no_concentration_data",
			Strategy: "Take the concentration test to complete your study profile.",
		}
	}
	if attn.Sessions == 0 {
		return Pattern{
			Key:      "no_attention_data",
			Strategy: "Watch some course resources so we can measure your attention over time.",
		}
	}

	highCon := dc.Con >= patternConCutoff
	highAttn := attn.Average >= patternPctCutoff
	switch {
	case highCon && highAttn:
		return Pattern{
			Key:      "high_concentration_high_attention",
			Strategy: "Strong focus on both fronts. Push into harder material and longer sessions.",
		}
	case highCon && !highAttn:
		return Pattern{
			Key:      "high_concentration_low_attention",
			Strategy: "You concentrate well on tests but drift during videos. Try shorter resources with breaks in between.",
		}
	case !highCon && highAttn:
		return Pattern{
			Key:      "low_concentration_high_attention",
			Strategy: "You stay attentive but tire on sustained tasks. Alternate study blocks with active exercises.",
		}
	default:
		return Pattern{
			Key:      "low_concentration_low_attention",
			Strategy: "Start with short, simple resources and build up gradually. Frequent small wins help.",
		}
	}
}
