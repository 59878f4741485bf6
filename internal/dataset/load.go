// Package dataset reads the rows a table displays. A dataset is a JSON or
// YAML array of flat objects, or a CSV file whose first record is the
// header.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/util"
	"gopkg.in/yaml.v3"
)

// Format identifies a dataset encoding
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted --format values
var Formats = []Format{FormatJSON, FormatCSV, FormatYAML}

// ParseFormat validates a --format flag value. An empty string means
// detect from the file name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "csv", "tsv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", util.ErrUnknownFormat, s)
}

// DetectFormat picks a format from the file extension. Stdin and unknown
// extensions default to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the dataset at path ("-" for stdin).
func Load(path string, format Format) ([]pivot.Row, error) {
	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, util.DatasetLoadError(path, err)
		}
		defer f.Close()
		r = f
	}

	var sep rune = ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		sep = '\t'
	}

	rows, err := decode(bufio.NewReader(r), format, sep)
	if err != nil {
		return nil, util.DatasetLoadError(path, err)
	}
	return rows, nil
}

// Read decodes a dataset from r.
func Read(r io.Reader, format Format) ([]pivot.Row, error) {
	if format == FormatAuto {
		format = FormatJSON
	}
	return decode(r, format, ',')
}

func decode(r io.Reader, format Format, sep rune) ([]pivot.Row, error) {
	var (
		rows []pivot.Row
		err  error
	)
	switch format {
	case FormatJSON:
		rows, err = readJSON(r)
	case FormatYAML:
		rows, err = readYAML(r)
	case FormatCSV:
		rows, err = readCSV(r, sep)
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(Columns(rows)) == 0 {
		return nil, util.ErrEmptyDataset
	}
	return rows, nil
}

func readJSON(r io.Reader) ([]pivot.Row, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return normalize(raw), nil
}

func readYAML(r io.Reader) ([]pivot.Row, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return normalize(raw), nil
}

func readCSV(r io.Reader, sep rune) ([]pivot.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(util.ToValidUTF8(h))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []pivot.Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row := make(pivot.Row, len(header))
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = cell(util.ToValidUTF8(rec[i]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cell converts numeric CSV text to float64 so it sorts numerically. Only
// text that prints back unchanged is converted: "007", "Inf" or "1e3" stay
// strings so the cell shows what the file says.
func cell(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != t {
		return s
	}
	return f
}

// normalize turns decoded objects into rows. Integers become float64 and
// strings are repaired to valid UTF-8; nested values are kept as-is.
func normalize(raw []map[string]any) []pivot.Row {
	rows := make([]pivot.Row, 0, len(raw))
	for _, obj := range raw {
		if obj == nil {
			continue
		}
		row := make(pivot.Row, len(obj))
		for k, v := range obj {
			switch x := v.(type) {
			case int:
				row[k] = float64(x)
			case int64:
				row[k] = float64(x)
			case uint64:
				row[k] = float64(x)
			case string:
				row[k] = util.ToValidUTF8(x)
			default:
				row[k] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Columns returns every field name seen in rows, in first-seen order by
// row and alphabetical within a row.
func Columns(rows []pivot.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return cols
}
