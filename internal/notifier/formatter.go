package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"StockSentry/internal/model"
)

// ruleLabels maps rule identifiers to human-readable email labels.
var ruleLabels = map[model.RuleID]string{
	model.RuleLessThanMin90:       "Less than minimum of last 90 days",
	model.RuleLessThan80PctDiff90: "Below 80% of the gap between average and minimum of last 90 days",
	model.RuleLessThanMin30:       "Less than minimum of last 30 days",
}

// RuleLabel returns the display label for a rule, falling back to the raw
// identifier.
func RuleLabel(rule model.RuleID) string {
	if label, ok := ruleLabels[rule]; ok {
		return label
	}
	return string(rule)
}

// FormatText renders the aggregated alerts as a plain-text table, used as
// the fallback when HTML is not supported.
func FormatText(alerts []model.AggregatedAlert) string {
	if len(alerts) == 0 {
		return "No matching signals for today."
	}

	var b strings.Builder
	b.WriteString("Ticker / Condition / Min Price / Compare With\n")
	b.WriteString("--------------------------------------------------\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("%s | %s | %.4f | %.4f\n",
			a.Ticker, a.Field, a.MinPrice, a.CompareWith))
	}
	b.WriteString(fmt.Sprintf("\n%s signal(s) today.\n", humanize.Comma(int64(len(alerts)))))
	return b.String()
}

// FormatWeeklyText renders the weekly rows as a plain-text table.
func FormatWeeklyText(rows []model.WeeklyRow) string {
	if len(rows) == 0 {
		return "No weekly signals to report."
	}

	var b strings.Builder
	b.WriteString("Ticker | Week flag | Current price | Compared with\n")
	b.WriteString("-----------------------------------------------------------\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s | %s | %.4f | %.4f\n",
			r.Ticker, r.Flag, r.CurrentPrice, r.CompareWith))
	}
	return b.String()
}

// FormatWeeklyHTML renders the weekly rows as an HTML table for the email
// body.
func FormatWeeklyHTML(rows []model.WeeklyRow) string {
	if len(rows) == 0 {
		return `<html><body style="font-family: Arial, sans-serif; font-size: 14px;">` +
			`<p>No weekly signals to report.</p></body></html>`
	}

	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; font-size: 14px;">`)
	b.WriteString(`<p>Here's the list of Stocks favorable to invest in at the moment:</p>`)
	b.WriteString(`<table style="border-collapse: collapse; border:1px solid #ccc;"><thead>`)
	b.WriteString(`<tr style="background-color:#f2f2f2;">`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Ticker</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Week flag</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Current price</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Compared with</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, r := range rows {
		b.WriteString(`<tr>`)
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px;">%s</td>`, r.Ticker))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px;">%s</td>`, r.Flag))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px; text-align:right;">%.4f</td>`, r.CurrentPrice))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px; text-align:right;">%.4f</td>`, r.CompareWith))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

// FormatHTML renders the aggregated alerts as an HTML table for the email
// body.
func FormatHTML(alerts []model.AggregatedAlert) string {
	if len(alerts) == 0 {
		return `<html><body style="font-family: Arial, sans-serif; font-size: 14px;">` +
			`<p>No matching signals for today.</p></body></html>`
	}

	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; font-size: 14px;">`)
	b.WriteString(`<p>Signals for today:</p>`)
	b.WriteString(`<table style="border-collapse: collapse; border:1px solid #ccc;"><thead>`)
	b.WriteString(`<tr style="background-color:#f2f2f2;">`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Ticker</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Condition</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Min Price</th>`)
	b.WriteString(`<th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Compare With</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, a := range alerts {
		b.WriteString(`<tr>`)
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px;">%s</td>`, a.Ticker))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px;">%s</td>`, RuleLabel(a.Field)))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px; text-align:right;">%.4f</td>`, a.MinPrice))
		b.WriteString(fmt.Sprintf(`<td style="border:1px solid #ccc; padding:4px 8px; text-align:right;">%.4f</td>`, a.CompareWith))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}
