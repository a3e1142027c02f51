package shadowscan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/redactyl/shadowscan/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect reports saved with scan --save",
	}
	rootCmd.AddCommand(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withReportStore(func(s store.Reports, tenant string) error {
				rs, err := s.ListReports(tenant)
				if err != nil {
					return err
				}
				if flagJSON {
					if rs == nil {
						rs = []report.Report{}
					}
					return writeJSON(rs)
				}
				report.PrintReports(os.Stdout, rs)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withReportStore(func(s store.Reports, tenant string) error {
				r, err := s.GetReport(tenant, args[0])
				if err != nil {
					return fmt.Errorf("report %s: %w", args[0], err)
				}
				if flagJSON {
					return writeJSON(r)
				}
				report.PrintReport(os.Stdout, r, colorDisabled(false))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withReportStore(func(s store.Reports, tenant string) error {
				if err := s.DeleteReport(tenant, args[0]); err != nil {
					return fmt.Errorf("report %s: %w", args[0], err)
				}
				fmt.Fprintln(os.Stdout, "Deleted", args[0])
				return nil
			})
		},
	})
}

func withReportStore(fn func(s store.Reports, tenant string) error) error {
	cfgs := loadConfigs(".")
	s, err := store.Open(cfgs.storePath(), logging.Component(logger, "store"))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s, cfgs.tenant())
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
