package shadowscan

import (
	"fmt"
	"os"

	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagJSON            bool
	flagSARIF           bool
	flagText            bool
	flagThreads         int
	flagFailOn          string
	flagNoColor         bool
	flagMinScore        float64
	flagDefaultExcludes bool
	flagStore           string
	flagTenant          string
	flagLogLevel        string
	flagLogJSON         bool

	version = "0.1.0"

	logger = logrus.New()
)

// rootCmd is the base Cobra command for the shadowscan CLI.
var rootCmd = &cobra.Command{
	Use:           "shadowscan",
	Short:         "Find shadow data in source code",
	Long:          "shadowscan reports personal, financial, healthcare and credential data embedded in source code, with masked values and a severity for each finding.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		l, err := logging.New(os.Stderr, flagLogLevel, flagLogJSON)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute runs the shadowscan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "medium", "fail on low|medium|high|critical")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().Float64Var(&flagMinScore, "min-score", 0.0, "only show findings with score >= value (0-1)")
	rootCmd.PersistentFlags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, images, etc.)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "report and keyword store (bbolt file, or .jsonl for reports only)")
	rootCmd.PersistentFlags().StringVar(&flagTenant, "tenant", "", "tenant that owns reports and keywords")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", logging.DefaultLevel, "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")
}

// colorDisabled reports whether severity colors should be off for stdout.
func colorDisabled(cfgNoColor bool) bool {
	return flagNoColor || cfgNoColor || !term.IsTerminal(int(os.Stdout.Fd()))
}
