package shadowscan

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the shadowscan version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("shadowscan", version)
		},
	})
}
