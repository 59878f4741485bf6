package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/imgajeed76/tracktable/internal/config"
	"github.com/imgajeed76/tracktable/internal/dataset"
	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/ui"
	"github.com/imgajeed76/tracktable/internal/ui/table"
	"github.com/imgajeed76/tracktable/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file|->",
		Short: "Open a dataset as a grouped table",
		Long: `Open a JSON, YAML or CSV dataset as a table grouped by the configured
primary column (employee name by default).

Interactive keys:
  ←/→ s        select a column, sort it (ascending, then descending)
  m            move the selected column (←/→ pick a target, m drops before it)
  f            show/hide columns
  n/p 1-9 :    next/previous page, jump to page, go to page
  z            cycle page size (10, 20, 30, 40)
  /            search
  y            copy the selected row
  J/R/P        quit and print JSON / raw / plain

Examples:
  tracktable view sessions.json
  tracktable view export.csv --sort total_minutes --desc
  tracktable view sessions.json --hide client,project_manager --no-pager
  cat sessions.json | tracktable view - --json --all`,
		Args: cobra.ExactArgs(1),
		RunE: runView,
	}

	cmd.Flags().String("format", "", "Dataset format: json, csv or yaml (default: from file extension)")
	cmd.Flags().String("sort", "", "Sort by this column key")
	cmd.Flags().Bool("desc", false, "Sort descending (with --sort)")
	cmd.Flags().Int("page", 1, "Page to open")
	cmd.Flags().Int("page-size", 0, "Rows per page (default: table.page_size from config)")
	cmd.Flags().StringSlice("hide", nil, "Hide these detail columns")
	cmd.Flags().StringSlice("order", nil, "Show only these detail columns, in this order")
	cmd.Flags().String("search", "", "Only show rows containing this text")
	cmd.Flags().Bool("all", false, "Print every page instead of one (non-interactive output)")
	cmd.Flags().Bool("raw", false, "Output tab-separated values (for piping)")
	cmd.Flags().Bool("json", false, "Output results as JSON")
	cmd.Flags().Bool("no-pager", false, "Disable interactive table view")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "csv", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// viewFlags are the view command's table options
type viewFlags struct {
	Sort     string
	Desc     bool
	Page     int
	PageSize int
	Hide     []string
	Order    []string
	Search   string
}

func readViewFlags(cmd *cobra.Command) viewFlags {
	var f viewFlags
	f.Sort, _ = cmd.Flags().GetString("sort")
	f.Desc, _ = cmd.Flags().GetBool("desc")
	f.Page, _ = cmd.Flags().GetInt("page")
	f.PageSize, _ = cmd.Flags().GetInt("page-size")
	f.Hide, _ = cmd.Flags().GetStringSlice("hide")
	f.Order, _ = cmd.Flags().GetStringSlice("order")
	f.Search, _ = cmd.Flags().GetString("search")
	return f
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}
	schema := cfg.PivotSchema()

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := dataset.ParseFormat(formatFlag)
	if err != nil {
		return util.NewError(fmt.Sprintf("Unknown format '%s'", formatFlag)).
			WithMessage("Supported formats: json, csv, yaml").
			Wrap(err)
	}

	spinner := ui.NewSpinner("Loading " + filepath.Base(path))
	spinner.Start()
	rows, err := dataset.Load(path, format)
	spinner.Stop()
	if err != nil {
		return err
	}
	fields := dataset.Columns(rows)
	logger.Debug("loaded dataset",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Strings("fields", fields))

	if !slices.Contains(fields, schema.Primary.Key) {
		uerr := util.NewError(fmt.Sprintf("Dataset has no '%s' field", schema.Primary.Key)).
			WithMessage("Fields in this dataset: " + strings.Join(fields, ", "))
		if len(fields) > 0 {
			uerr = uerr.WithSuggestions(fmt.Sprintf("tracktable config schema.primary_key %s", fields[0]))
		}
		return uerr
	}
	for _, d := range schema.DetailKeys() {
		if !slices.Contains(fields, d) {
			logger.Debug("detail column missing from dataset", zap.String("column", d))
		}
	}

	state, err := buildState(schema, cfg, readViewFlags(cmd))
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetBool("raw")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noPager, _ := cmd.Flags().GetBool("no-pager")
	all, _ := cmd.Flags().GetBool("all")
	opts := table.DisplayOptions{JSON: jsonOutput, Raw: raw, NoPager: noPager, All: all}

	// The viewer owns the terminal: only file logging survives it.
	viewLogger := logger
	if table.Interactive(opts, len(rows)) {
		if logFile, _ := cmd.Flags().GetString("log-file"); logFile == "" {
			viewLogger = zap.NewNop()
		}
	}

	return table.DisplayResults(rows, table.Settings{
		Title:      filepath.Base(path),
		Schema:     schema,
		State:      state,
		PageSizes:  cfg.Table.PageSizes,
		ColWidth:   cfg.Display.ColWidth,
		GroupWidth: cfg.Display.GroupWidth,
		Mouse:      cfg.Display.Mouse,
		Logger:     viewLogger,
	}, opts)
}

// buildState turns the view flags into the table's starting state,
// validating every column name against the schema.
func buildState(schema pivot.Schema, cfg *config.Config, f viewFlags) (pivot.State, error) {
	pageSize := cfg.Table.PageSize
	if f.PageSize != 0 {
		if !slices.Contains(cfg.Table.PageSizes, f.PageSize) {
			return pivot.State{}, util.InvalidPageSizeError(f.PageSize, cfg.Table.PageSizes)
		}
		pageSize = f.PageSize
	}
	state := pivot.NewState(schema, pageSize)

	known := append([]string{schema.Primary.Key}, schema.DetailKeys()...)

	if len(f.Order) > 0 {
		for _, id := range f.Order {
			if !schema.HasDetail(id) {
				return pivot.State{}, util.UnknownColumnError(id, schema.DetailKeys())
			}
		}
		state.Order = state.Order.ReplaceAll(f.Order)
	}

	for _, id := range f.Hide {
		if !schema.HasDetail(id) {
			return pivot.State{}, util.UnknownColumnError(id, schema.DetailKeys())
		}
		state.Filter = state.Filter.Hide(id)
	}

	if f.Sort != "" {
		if !slices.Contains(known, f.Sort) {
			return pivot.State{}, util.UnknownColumnError(f.Sort, known)
		}
		state.Sort = pivot.SortSpec{Key: f.Sort, Direction: pivot.Ascending}
		if f.Desc {
			state.Sort.Direction = pivot.Descending
		}
	}

	if f.Page > 1 {
		state.Pager = state.Pager.Goto(f.Page)
	}
	state.Query = f.Search

	return state, nil
}
