package cli

import (
	"fmt"
	"strings"

	"github.com/imgajeed76/tracktable/internal/config"
	"github.com/imgajeed76/tracktable/internal/ui/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get and set tracktable options",
		Long: `Get and set tracktable configuration options.

Examples:
  tracktable config table.page_size        # Get value
  tracktable config table.page_size 20     # Set value
  tracktable config display.mouse false    # Set value
  tracktable config --list                 # List all config
  tracktable config --path                 # Show the config file path

Available options:
` + config.GenerateHelpText(),
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ListKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file path")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")
	out := cmd.OutOrStdout()

	path := configPath(cmd)
	if path == "" {
		path = config.Path()
	}

	if showPath {
		fmt.Fprintln(out, path)
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		sizes := make([]string, len(cfg.Table.PageSizes))
		for i, n := range cfg.Table.PageSizes {
			sizes[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(out, "table.page_sizes=%s\n", strings.Join(sizes, ","))
		for _, c := range cfg.PivotSchema().Details {
			fmt.Fprintf(out, "schema.columns.%s=%s\n", c.Key, c.Label)
		}
		return nil
	}

	if len(args) == 0 {
		return cmd.Help()
	}

	key := strings.ToLower(args[0])

	// Get or set?
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		fmt.Fprintln(out, value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	logger.Debug("config updated", zap.String("key", key), zap.String("path", path))

	fmt.Fprintln(out, styles.SuccessMsg(fmt.Sprintf("%s = %s", key, args[1])))
	return nil
}
