package shadowscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redactyl/shadowscan/internal/engine"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	var output string
	update := &cobra.Command{
		Use:   "update [path]",
		Short: "Accept every current finding into the baseline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			cfgs := loadConfigs(abs)
			ctx := cmdContext(cmd)
			kc, closeKeywords := keywordSource(cfgs, logging.Component(logger, "baseline"))
			defer closeKeywords()
			cfg := engine.Config{
				Root:            abs,
				MaxBytes:        pickInt64(0, cfgs.local.MaxBytes, cfgs.global.MaxBytes),
				Threads:         pickInt(flagThreads, cfgs.local.Threads, cfgs.global.Threads),
				DefaultExcludes: pickBool(cmd, "default-excludes", flagDefaultExcludes, cfgs.local.DefaultExcludes, cfgs.global.DefaultExcludes),
				KeywordSource:   kc,
				Tenant:          cfgs.tenant(),
				Logger:          logging.Component(logger, "engine"),
			}
			res, err := engine.ScanFiles(ctx, cfg)
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(output, res.Findings); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Baseline updated: %d findings.\n", len(res.Findings))
			return nil
		},
	}
	update.Flags().StringVar(&output, "output", defaultBaselineFile, "baseline file to write")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
