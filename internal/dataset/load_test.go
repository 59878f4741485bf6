package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSON(t *testing.T) {
	rows, err := Load(filepath.Join("testdata", "sessions.json"), FormatAuto)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Alice Moreau", rows[0]["name"])
	assert.Equal(t, float64(240), rows[0]["total_minutes"])
	assert.Equal(t, "Contoso", rows[1].Text("client"))
}

func TestLoad_CSV(t *testing.T) {
	rows, err := Load(filepath.Join("testdata", "sessions.csv"), FormatAuto)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, float64(240), rows[0]["total_minutes"])
	assert.Equal(t, float64(95), rows[1]["total_minutes"])
	assert.Equal(t, "", rows[2]["total_minutes"])

	// Numeric cells sort numerically, not lexically
	sorted := pivot.Sort(rows, pivot.SortSpec{Key: "total_minutes", Direction: pivot.Ascending})
	assert.Equal(t, "Cara Lind", sorted[0].Text("name"))
}

func TestLoad_YAML(t *testing.T) {
	rows, err := Load(filepath.Join("testdata", "sessions.yaml"), FormatAuto)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, float64(240), rows[0]["total_minutes"])
	assert.Equal(t, 95.5, rows[1]["total_minutes"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), FormatAuto)
	require.Error(t, err)

	var uerr *util.Error
	require.True(t, errors.As(err, &uerr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader("[]"), FormatJSON)
	assert.ErrorIs(t, err, util.ErrEmptyDataset)

	_, err = Read(strings.NewReader(""), FormatCSV)
	assert.ErrorIs(t, err, util.ErrEmptyDataset)

	_, err = Read(strings.NewReader("name,role\n"), FormatCSV)
	assert.ErrorIs(t, err, util.ErrEmptyDataset)
}

func TestRead_RowsWithoutFields(t *testing.T) {
	_, err := Read(strings.NewReader("[{}]"), FormatJSON)
	assert.ErrorIs(t, err, util.ErrEmptyDataset)

	_, err = Read(strings.NewReader(",\n1,2\n"), FormatCSV)
	assert.ErrorIs(t, err, util.ErrEmptyDataset)
}

func TestRead_CSVCellsKeepTheirText(t *testing.T) {
	input := "name,project_name,client,role,code,total_minutes,rate\n" +
		"Ana,007,Inf,NaN,0x1p-2,90,12.5\n"
	rows, err := Read(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "007", row["project_name"])
	assert.Equal(t, "Inf", row["client"])
	assert.Equal(t, "NaN", row["role"])
	assert.Equal(t, "0x1p-2", row["code"])
	assert.Equal(t, float64(90), row["total_minutes"])
	assert.Equal(t, 12.5, row["rate"])
	assert.Equal(t, "007", row.Text("project_name"))
}

func TestRead_InvalidJSON(t *testing.T) {
	_, err := Read(strings.NewReader(`{"name": "not an array"}`), FormatJSON)
	assert.Error(t, err)
}

func TestRead_Latin1CSV(t *testing.T) {
	// "Müller" encoded as ISO-8859-1
	input := "name\nM\xfcller\n"
	rows, err := Read(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Müller", rows[0]["name"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"tsv", FormatCSV},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, util.ErrUnknownFormat)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("export.CSV"))
	assert.Equal(t, FormatYAML, DetectFormat("data.yml"))
	assert.Equal(t, FormatJSON, DetectFormat("-"))
	assert.Equal(t, FormatJSON, DetectFormat("data.txt"))
}

func TestColumns(t *testing.T) {
	rows := []pivot.Row{
		{"name": "a", "b": 1, "a": 2},
		{"name": "b", "c": 3},
	}
	assert.Equal(t, []string{"a", "b", "name", "c"}, Columns(rows))
}
