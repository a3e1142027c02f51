package shadowscan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/redactyl/shadowscan/internal/engine"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/redactyl/shadowscan/pkg/core"
	"github.com/spf13/cobra"
)

func init() {
	var fileType string
	cmd := &cobra.Command{
		Use:   "test-rule <id>",
		Short: "Run one rule against text read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id := strings.ToUpper(args[0])
			if _, ok := detectors.Lookup(id); !ok {
				fmt.Fprintf(os.Stderr, "unknown rule id: %s\n", id)
				fmt.Fprintf(os.Stderr, "available: %s\n", strings.Join(detectors.IDs(), ", "))
				os.Exit(2)
			}
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			opts := engine.Options{Extended: detectors.IsExtended(id), Keywords: flagKeywords}
			res, err := core.Scan(core.Request{Text: string(data), FileType: fileType, Options: opts})
			if err != nil {
				return err
			}
			fs := engine.FilterFindings(res.Findings, id, "", 0)
			if flagJSON {
				return core.MarshalResult(os.Stdout, core.Result{Findings: fs, Metadata: engine.Summarize(fs)})
			}
			report.PrintTable(os.Stdout, fs, report.PrintOptions{NoColor: colorDisabled(false)})
			return nil
		},
	}
	cmd.Long = "Available rules: " + strings.Join(detectors.IDs(), ", ")
	cmd.Flags().StringVar(&fileType, "type", "text", "file type used for scoring")
	cmd.Flags().StringSliceVar(&flagKeywords, "keyword", nil, "custom keyword (for CUSTOM_KEYWORD)")
	rootCmd.AddCommand(cmd)
}
