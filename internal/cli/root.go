package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgajeed76/tracktable/internal/logging"
	"github.com/imgajeed76/tracktable/internal/ui/styles"
	"github.com/imgajeed76/tracktable/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// logger is replaced in PersistentPreRunE once flags are parsed
var logger = zap.NewNop()

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracktable",
		Short: "A grouped, sortable, paginated table viewer for time-tracking exports",
		Long: `tracktable opens a JSON, YAML or CSV export of work sessions as a pivot
table: rows are grouped by employee, columns can be sorted, reordered and
hidden, and the result is paginated.

On a terminal the table is interactive. When piped, it prints plain text,
JSON (--json) or tab-separated values (--raw).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-file", "", "Write logs to this file (use with the interactive viewer)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: $XDG_CONFIG_HOME/tracktable/config.toml)")

	// Version flag template to show more info
	cmd.SetVersionTemplate(fmt.Sprintf("tracktable version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	// Set up pre-run to handle global flags
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		if noColor {
			styles.SetNoColor(true)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		logFile, _ := cmd.Flags().GetString("log-file")
		l, err := logging.New(logging.Options{Verbose: verbose, File: logFile})
		if err != nil {
			return err
		}
		logger = l
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}

	// Add all subcommands
	cmd.AddCommand(
		newViewCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return cmd
}

// Execute runs the root command and prints errors the way users expect:
// structured errors with causes and suggestions, anything else on one line.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		var tErr *util.Error
		if errors.As(err, &tErr) {
			fmt.Fprintln(os.Stderr, tErr.Format())
		} else {
			// Simple error - still format nicely
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

// configPath returns the --config flag value ("" means the default path).
func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	return p
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tracktable.

Bash:
  $ source <(tracktable completion bash)

Zsh:
  $ tracktable completion zsh > "${fpath[1]}/_tracktable"

Fish:
  $ tracktable completion fish > ~/.config/fish/completions/tracktable.fish

PowerShell:
  PS> tracktable completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tracktable version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}
