package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// csvRow is one contract per line of a scenario CSV file. Rate is kept as
// text so an empty cell can mean "use the scenario default".
type csvRow struct {
	Name       string  `csv:"name"`
	Type       string  `csv:"type"`
	Spot       float64 `csv:"spot"`
	Strike     string  `csv:"strike"`
	Years      float64 `csv:"years"`
	Days       float64 `csv:"days"`
	Rate       string  `csv:"rate"`
	Volatility float64 `csv:"volatility"`
}

// LoadFile reads a scenario from path. The format follows the extension:
// .json, .yaml/.yml, or .csv (header row, one contract per line).
func LoadFile(path string) (Scenario, error) {
	var sc Scenario

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return Scenario{}, fmt.Errorf("reading scenario: %w", err)
		}
		if err := json.Unmarshal(b, &sc); err != nil {
			return Scenario{}, fmt.Errorf("invalid scenario %s: %w", path, err)
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return Scenario{}, fmt.Errorf("reading scenario: %w", err)
		}
		if err := yaml.Unmarshal(b, &sc); err != nil {
			return Scenario{}, fmt.Errorf("invalid scenario %s: %w", path, err)
		}
	case ".csv":
		specs, err := loadCSV(path)
		if err != nil {
			return Scenario{}, err
		}
		sc.Contracts = specs
	default:
		return Scenario{}, fmt.Errorf("unsupported scenario extension %q", ext)
	}

	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(sc.Contracts) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no contracts", path)
	}
	return sc, nil
}

func loadCSV(path string) ([]ContractSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario file: %w", err)
	}
	defer f.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	specs := make([]ContractSpec, 0, len(rows))
	for i, row := range rows {
		spec := ContractSpec{
			Name:       strings.TrimSpace(row.Name),
			Type:       strings.TrimSpace(row.Type),
			Spot:       row.Spot,
			Strike:     StrikeRule(strings.TrimSpace(row.Strike)),
			Years:      row.Years,
			Days:       row.Days,
			Volatility: row.Volatility,
		}
		if s := strings.TrimSpace(row.Rate); s != "" {
			r, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("csv %s line %d: rate: %w", path, i+2, err)
			}
			spec.Rate = &r
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
