package shadowscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redactyl/shadowscan/internal/ignore"
	"github.com/spf13/cobra"
)

func init() {
	var root string
	cmd := &cobra.Command{
		Use:   "ignore <pattern>...",
		Short: "Add gitignore-style patterns to " + ignore.FileName,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			for _, p := range args {
				if err := ignore.Append(abs, p); err != nil {
					return err
				}
			}
			fmt.Fprintf(os.Stdout, "Updated %s\n", filepath.Join(abs, ignore.FileName))
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "scan root that holds the ignore file")
	rootCmd.AddCommand(cmd)
}
