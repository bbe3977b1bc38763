// Package report renders valuations for people and tools: an aligned table
// for the terminal, JSON, and CSV. Numbers are shown with six decimals.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/scenario"
)

// Places is the number of decimals used for display.
const Places = 6

// Row is one valued contract. Error is set instead of the outputs when the
// contract could not be valued.
type Row struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Years      float64 `json:"years"`
	Rate       float64 `json:"rate"`
	Volatility float64 `json:"volatility"`
	Price      float64 `json:"price"`
	Delta      float64 `json:"delta"`
	Gamma      float64 `json:"gamma"`
	Theta      float64 `json:"theta"`
	Vega       float64 `json:"vega"`
	Rho        float64 `json:"rho"`
	Error      string  `json:"error,omitempty"`
}

// csvRow is Row with numbers pre-formatted to Places decimals.
type csvRow struct {
	Name       string `csv:"name"`
	Type       string `csv:"type"`
	Spot       string `csv:"spot"`
	Strike     string `csv:"strike"`
	Years      string `csv:"years"`
	Rate       string `csv:"rate"`
	Volatility string `csv:"volatility"`
	Price      string `csv:"price"`
	Delta      string `csv:"delta"`
	Gamma      string `csv:"gamma"`
	Theta      string `csv:"theta"`
	Vega       string `csv:"vega"`
	Rho        string `csv:"rho"`
	Error      string `csv:"error"`
}

// Result mirrors the JSON document written by WriteJSON.
type Result struct {
	Scenario string `json:"scenario,omitempty"`
	Rows     []Row  `json:"valuations"`
}

// FromValuation builds a row for a valued contract.
func FromValuation(name string, c pricing.OptionContract, v pricing.Valuation) Row {
	return Row{
		Name:       name,
		Type:       c.Type().String(),
		Spot:       c.Spot(),
		Strike:     c.Strike(),
		Years:      c.TimeToExpiry(),
		Rate:       c.RiskFreeRate(),
		Volatility: c.Volatility(),
		Price:      v.Price,
		Delta:      v.Delta,
		Gamma:      v.Gamma,
		Theta:      v.Theta,
		Vega:       v.Vega,
		Rho:        v.Rho,
	}
}

// FromResolved converts resolved scenario legs into rows.
func FromResolved(legs []scenario.Resolved) []Row {
	rows := make([]Row, 0, len(legs))
	for i, r := range legs {
		name := r.Spec.Name
		if name == "" {
			name = fmt.Sprintf("leg-%d", i+1)
		}
		rows = append(rows, FromValuation(name, r.Contract, r.Valuation))
	}
	return rows
}

// FromBatch converts index-aligned batch results into rows.
func FromBatch(names []string, contracts []pricing.OptionContract, results []pricing.BatchResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		name := fmt.Sprintf("contract-%d", res.Index+1)
		if res.Index < len(names) && names[res.Index] != "" {
			name = names[res.Index]
		}
		if res.Err != nil {
			rows = append(rows, Row{Name: name, Error: res.Err.Error()})
			continue
		}
		rows = append(rows, FromValuation(name, contracts[res.Index], res.Valuation))
	}
	return rows
}

// Fixed formats x with Places decimals. Non-finite values print as-is.
func Fixed(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Sprint(x)
	}
	return decimal.NewFromFloat(x).StringFixed(Places)
}

func (r Row) csv() *csvRow {
	if r.Error != "" {
		return &csvRow{Name: r.Name, Type: r.Type, Error: r.Error}
	}
	return &csvRow{
		Name:       r.Name,
		Type:       r.Type,
		Spot:       Fixed(r.Spot),
		Strike:     Fixed(r.Strike),
		Years:      Fixed(r.Years),
		Rate:       Fixed(r.Rate),
		Volatility: Fixed(r.Volatility),
		Price:      Fixed(r.Price),
		Delta:      Fixed(r.Delta),
		Gamma:      Fixed(r.Gamma),
		Theta:      Fixed(r.Theta),
		Vega:       Fixed(r.Vega),
		Rho:        Fixed(r.Rho),
	}
}

// WriteJSON writes valuations.json into outdir.
func WriteJSON(res Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "valuations.json"), b, 0644)
}

// WriteCSV writes valuations.csv into outdir.
func WriteCSV(rows []Row, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "valuations.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeCSV(f, rows)
}

// EncodeCSV writes rows as CSV with a header line.
func EncodeCSV(w io.Writer, rows []Row) error {
	out := make([]*csvRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.csv())
	}
	return gocsv.Marshal(&out, w)
}

// WriteTable renders rows as an aligned text table.
func WriteTable(w io.Writer, rows []Row) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "type", "spot", "strike", "T", "r", "vol", "price", "delta", "gamma", "theta", "vega", "rho"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range rows {
		if r.Error != "" {
			table.Append([]string{r.Name, r.Type, "error: " + r.Error, "", "", "", "", "", "", "", "", "", ""})
			continue
		}
		c := r.csv()
		table.Append([]string{c.Name, c.Type, c.Spot, c.Strike, c.Years, c.Rate, c.Volatility, c.Price, c.Delta, c.Gamma, c.Theta, c.Vega, c.Rho})
	}

	table.Render()
}
