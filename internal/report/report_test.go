package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/scenario"
	"github.com/contactkeval/option-pricer/internal/testutil"
)

func workedRows(t *testing.T) []Row {
	t.Helper()
	legs, err := scenario.Default().Resolve(0.05)
	require.NoError(t, err)
	return FromResolved(legs)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "7.961844", Fixed(7.961844231714387))
	assert.Equal(t, "-0.458051", Fixed(-0.45805107))
	assert.Equal(t, "100.000000", Fixed(100))
	assert.Equal(t, "0.000000", Fixed(0))
	assert.Equal(t, "NaN", Fixed(math.NaN()))
	assert.Equal(t, "+Inf", Fixed(math.Inf(1)))
}

func TestEncodeCSVGolden(t *testing.T) {
	rows := append(workedRows(t), Row{Name: "broken", Type: "call", Error: "boom"})

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, rows))

	testutil.CompareBytesWithGolden(t, "worked_example.csv", buf.Bytes())
}

func TestFromResolvedNames(t *testing.T) {
	legs, err := scenario.Default().Resolve(0.05)
	require.NoError(t, err)
	legs[1].Spec.Name = ""

	rows := FromResolved(legs)
	require.Len(t, rows, 3)
	assert.Equal(t, "euro-call", rows[0].Name)
	assert.Equal(t, "leg-2", rows[1].Name)
	assert.Equal(t, "put", rows[1].Type)
	assert.Equal(t, 105.0, rows[1].Strike)
	assert.Equal(t, legs[2].Valuation.Rho, rows[2].Rho)
}

func TestFromBatch(t *testing.T) {
	c, err := pricing.NewOptionContract(pricing.Call, 100, 105, 1, 0.05, 0.1985)
	require.NoError(t, err)
	contracts := []pricing.OptionContract{c, {}}
	results := pricing.ValuateBatch(context.Background(), contracts, 2)

	rows := FromBatch([]string{"", "empty"}, contracts, results)
	require.Len(t, rows, 2)

	assert.Equal(t, "contract-1", rows[0].Name)
	assert.InDelta(t, 7.961844, rows[0].Price, 1e-6)
	assert.Empty(t, rows[0].Error)

	assert.Equal(t, "empty", rows[1].Name)
	assert.NotEmpty(t, rows[1].Error)
	assert.True(t, errors.Is(results[1].Err, pricing.ErrInvalidParameter))
}

func TestWriteTable(t *testing.T) {
	rows := append(workedRows(t), Row{Name: "broken", Type: "put", Error: "boom"})

	var buf bytes.Buffer
	WriteTable(&buf, rows)
	out := buf.String()

	for _, want := range []string{"name", "delta", "euro-put-95", "7.961844", "-0.458051", "3.663518", "error: boom"} {
		assert.Contains(t, out, want)
	}
	// header, separators and one line per row
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), len(rows)+3)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	rows := workedRows(t)

	require.NoError(t, WriteJSON(Result{Scenario: "worked-example", Rows: rows}, dir))
	require.NoError(t, WriteCSV(rows, dir))

	b, err := os.ReadFile(filepath.Join(dir, "valuations.json"))
	require.NoError(t, err)
	var got Result
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "worked-example", got.Scenario)
	assert.Equal(t, rows, got.Rows)

	b, err = os.ReadFile(filepath.Join(dir, "valuations.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "name,type,spot,strike"))
	assert.Equal(t, 4, strings.Count(string(b), "\n"))
}

func TestWriteJSONMissingDir(t *testing.T) {
	err := WriteJSON(Result{}, filepath.Join(t.TempDir(), "nope", "deeper"))
	assert.Error(t, err)
}
