package rules

import (
	"time"

	"github.com/google/uuid"

	"StockSentry/internal/model"
)

// TickerInput is one ticker's evaluation input: the current observed price
// and its rolling stats.
type TickerInput struct {
	Ticker string
	Price  float64
	Stats  *model.RollingStats
}

// Evaluate applies the eight threshold rules to every input and returns one
// ExecutionSnapshot. Rules are independent: a ticker below the minimum is
// still recorded as below the average. Inputs must already be in the
// configured ticker order; each rule's match sequence preserves it. Rules
// over an empty window are skipped for that ticker.
func Evaluate(createdAt time.Time, inputs []TickerInput) *model.ExecutionSnapshot {
	snap := model.NewExecutionSnapshot(uuid.NewString(), createdAt.UTC())

	for _, in := range inputs {
		if in.Stats == nil {
			continue
		}
		if w := in.Stats.Window30; w != nil {
			applyWindow(snap, in.Ticker, in.Price, w,
				model.RuleLessThanAvg30, model.RuleLessThanMin30,
				model.RuleLessThan80PctDiff30, model.RuleLessThan50PctDiff30)
		}
		if w := in.Stats.Window90; w != nil {
			applyWindow(snap, in.Ticker, in.Price, w,
				model.RuleLessThanAvg90, model.RuleLessThanMin90,
				model.RuleLessThan80PctDiff90, model.RuleLessThan50PctDiff90)
		}
	}

	return snap
}

// applyWindow evaluates the four rules of one lookback window.
func applyWindow(snap *model.ExecutionSnapshot, ticker string, price float64,
	w *model.WindowStats, avgRule, minRule, band80Rule, band50Rule model.RuleID) {

	addIfLess(snap, avgRule, ticker, price, w.AvgClose)
	addIfLess(snap, minRule, ticker, price, w.MinLow)
	addIfLess(snap, band80Rule, ticker, price, BandThreshold(w, 0.80))
	addIfLess(snap, band50Rule, ticker, price, BandThreshold(w, 0.50))
}

// BandThreshold interpolates between a window's average and minimum:
// avg − pct×(avg − min). A larger pct sits closer to the minimum.
func BandThreshold(w *model.WindowStats, pct float64) float64 {
	return w.AvgClose - pct*(w.AvgClose-w.MinLow)
}

// addIfLess records a match when price is strictly below the threshold.
// CompareWith is the threshold actually evaluated.
func addIfLess(snap *model.ExecutionSnapshot, rule model.RuleID, ticker string, price, threshold float64) {
	if price < threshold {
		snap.Append(rule, model.RuleMatch{
			Ticker:      ticker,
			Price:       price,
			CompareWith: threshold,
		})
	}
}
