package journal

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

// FormatTransactionOrg renders a Transaction as an Org-mode block. Structured
// facts live in a PROPERTIES drawer for easy search.
func FormatTransactionOrg(t Transaction) string {
	heading := fmt.Sprintf("** %s %s (%s)", strings.ToUpper(string(t.Kind)), orDash(t.Instrument), shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":PLAYER: %s\n", t.Player))
	b.WriteString(fmt.Sprintf(":DAY: %d\n", t.Day))
	if t.Kind != KindSalary {
		b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", t.Instrument))
		b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", t.Quantity))
		b.WriteString(fmt.Sprintf(":PRICE: %.4f\n", t.Price))
	}
	b.WriteString(fmt.Sprintf(":AMOUNT: %s\n", cash(t.Amount)))
	b.WriteString(fmt.Sprintf(":FUNDS_AFTER: %s\n", cash(t.FundsAfter)))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", t.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatTransactionsOrg renders multiple transactions separated by blank lines.
func FormatTransactionsOrg(txs []Transaction) string {
	var b strings.Builder
	for i, t := range txs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTransactionOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Report summarises a player's game from its journal.
type Report struct {
	Player       string
	Created      time.Time
	Transactions []Transaction
	Equity       []EquitySnapshot

	Buys, Sells, Salaries int
	Spent, Proceeds, Paid float64
}

// NewReport tallies txs and equity into a Report.
func NewReport(player string, txs []Transaction, equity []EquitySnapshot) Report {
	r := Report{Player: player, Transactions: txs, Equity: equity}
	for _, t := range txs {
		switch t.Kind {
		case KindBuy:
			r.Buys++
			r.Spent -= t.Amount
		case KindSell:
			r.Sells++
			r.Proceeds += t.Amount
		case KindSalary:
			r.Salaries++
			r.Paid += t.Amount
		}
	}
	return r
}

// Last returns the most recent equity snapshot, or nil when there is none.
func (r Report) Last() *EquitySnapshot {
	if len(r.Equity) == 0 {
		return nil
	}
	return &r.Equity[len(r.Equity)-1]
}

var reportFuncs = template.FuncMap{
	"cash": cash,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"org": FormatTransactionOrg,
	"sub": func(a, b float64) string {
		return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).StringFixed(2)
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// WriteOrg renders the report as an Org-mode document.
func (r Report) WriteOrg(w io.Writer) error {
	return reportTemplate.Execute(w, r)
}

const ReportOrgTemplate = `* GAME: {{.Player}}
:PROPERTIES:
:PLAYER:      {{.Player}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:BUYS:        {{.Buys}}
:SELLS:       {{.Sells}}
:SALARIES:    {{.Salaries}}
:END:

** Cash Flow
| Item     | Amount |
|----------+--------|
| Spent    | {{cash .Spent}} |
| Proceeds | {{cash .Proceeds}} |
| Salary   | {{cash .Paid}} |
| Net      | {{sub .Proceeds .Spent}} |
{{- with .Last}}

** Latest Valuation
- Day:         *{{.Day}}*
- Funds:       *{{cash .Funds}}*
- Stock value: *{{cash .StockValue}}*
- Total value: *{{cash .TotalValue}}*
{{- end}}
{{- if .Transactions}}

** Transactions
{{range .Transactions}}{{org .}}{{end}}
{{- end}}
`
