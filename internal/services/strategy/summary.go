package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"EGXAdvisor/internal/domain/models"
)

// buildSummary renders the one-paragraph explanation of the call: action,
// conviction, regime, the strongest weighted contributors, and the gate
// reason when the call was held back.
func (e *Engine) buildSummary(rec *models.StrategyRecommendation, groups []groupResult, missing []string, gated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, conviction %d/100, %s regime",
		strings.ToUpper(string(rec.Action)), rec.Symbol, rec.Conviction, rec.Regime)

	weights := map[string]float64{
		"ml_forecast": e.cfg.Weights.ML,
		"technical":   e.cfg.Weights.Technical,
		"regime":      e.cfg.Weights.Regime,
		"risk":        e.cfg.Weights.Risk,
	}

	type contrib struct {
		name   string
		score  float64
		impact float64
	}
	var contribs []contrib
	for _, g := range groups {
		if g.missing {
			continue
		}
		contribs = append(contribs, contrib{
			name:   g.name,
			score:  g.score,
			impact: math.Abs(g.score * weights[g.name]),
		})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].impact != contribs[j].impact {
			return contribs[i].impact > contribs[j].impact
		}
		return contribs[i].name < contribs[j].name
	})
	if len(contribs) > 4 {
		contribs = contribs[:4]
	}

	if len(contribs) > 0 {
		parts := make([]string, 0, len(contribs))
		for _, c := range contribs {
			parts = append(parts, fmt.Sprintf("%s %+.2f", c.name, c.score))
		}
		fmt.Fprintf(&b, "; drivers: %s", strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "; blended %+.2f, alignment %.2f", rec.Scores.Blended, rec.Scores.Alignment)

	if gated {
		if len(missing) > 0 {
			fmt.Fprintf(&b, "; held back: %s unavailable", strings.Join(missing, ", "))
		} else {
			fmt.Fprintf(&b, "; held back: evidence too mixed to act")
		}
	}
	return b.String()
}
