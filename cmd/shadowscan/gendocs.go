package shadowscan

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/spf13/cobra"
)

// gendocs regenerates the rules section in README.md between the markers
// <!-- BEGIN:RULE_CATEGORIES --> and <!-- END:RULE_CATEGORIES -->.
func init() {
	cmd := &cobra.Command{
		Use:    "gendocs",
		Short:  "Regenerate README rule categories",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := "README.md"
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			start := []byte("<!-- BEGIN:RULE_CATEGORIES -->")
			end := []byte("<!-- END:RULE_CATEGORIES -->")
			i := bytes.Index(b, start)
			j := bytes.Index(b, end)
			if i < 0 || j < 0 || j <= i {
				return fmt.Errorf("markers not found in README.md")
			}

			var nb bytes.Buffer
			nb.Write(b[:i])
			nb.Write(start)
			nb.WriteString("\n")
			nb.WriteString(ruleCategories(detectors.List()))
			nb.Write(end)
			nb.Write(b[j+len(end):])
			return os.WriteFile(path, nb.Bytes(), 0o644)
		},
	}
	rootCmd.AddCommand(cmd)
}

func ruleCategories(rules []detectors.Info) string {
	byCat := map[string][]string{}
	for _, r := range rules {
		id := "`" + r.ID + "`"
		if r.Extended {
			id += " (extended)"
		}
		byCat[r.Category] = append(byCat[r.Category], id)
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var out strings.Builder
	out.WriteString("\nRules by category (run `shadowscan patterns --extended` for scores and descriptions):\n\n")
	for _, c := range cats {
		out.WriteString("- " + c + ": " + strings.Join(byCat[c], ", ") + "\n")
	}
	out.WriteString("\n")
	return out.String()
}
