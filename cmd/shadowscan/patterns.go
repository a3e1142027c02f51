package shadowscan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/spf13/cobra"
)

func init() {
	var all bool
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"rules"},
		Short:   "List detection rules",
		RunE: func(_ *cobra.Command, _ []string) error {
			var rules []detectors.Info
			for _, in := range detectors.List() {
				if in.Extended && !all {
					continue
				}
				rules = append(rules, in)
			}
			if flagJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("ID", "Kind", "Category", "Score", "Description")
			for _, in := range rules {
				id := in.ID
				if in.Extended {
					id += " *"
				}
				if err := table.Append([]string{id, in.Kind, in.Category, fmt.Sprintf("%.2f", in.Score), in.Description}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			if all {
				fmt.Fprintln(os.Stdout, "* enabled with scan --extended")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "extended", false, "include opt-in rules")
	rootCmd.AddCommand(cmd)
}
