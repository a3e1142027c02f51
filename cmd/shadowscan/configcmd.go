package shadowscan

import (
	"fmt"
	"os"
	"strings"

	"github.com/redactyl/shadowscan/internal/config"
	"github.com/redactyl/shadowscan/internal/detectors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgPreset          string
	cfgOutput          string
	cfgEnable          string
	cfgDisable         string
	cfgThreads         int
	cfgMaxBytes        int64
	cfgMinScore        float64
	cfgNoColor         bool
	cfgDefaultExcludes bool
	cfgFailOn          string
	cfgTenant          string
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .shadowscan.yml with selected rules and options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the config files in effect for the current directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfgs := loadConfigs(".")
			for _, c := range []struct {
				name string
				fc   config.FileConfig
			}{{"global", cfgs.global}, {"local", cfgs.local}} {
				b, err := yaml.Marshal(&c.fc)
				if err != nil {
					return err
				}
				fmt.Printf("# %s\n%s", c.name, b)
			}
			fmt.Printf("# store: %s (tenant %s)\n", cfgs.storePath(), cfgs.tenant())
			return nil
		},
	}
	cfgCmd.AddCommand(showCmd)

	initCmd.Flags().StringVar(&cfgPreset, "preset", "standard", "rule preset: minimal | standard | maximal")
	initCmd.Flags().StringVar(&cfgOutput, "output", ".shadowscan.yml", "output file path")
	initCmd.Flags().StringVar(&cfgEnable, "enable", "", "comma-separated rule IDs to enable (overrides preset if set)")
	initCmd.Flags().StringVar(&cfgDisable, "disable", "", "comma-separated rule IDs to disable")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	initCmd.Flags().Float64Var(&cfgMinScore, "min-score", 0.0, "minimum finding score (0.0-1.0)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "enable default ignore patterns")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "medium", "severity that fails the scan")
	initCmd.Flags().StringVar(&cfgTenant, "tenant", "", "tenant for stored reports and keywords")
}

// presetIDs returns the enable list for a preset. The standard preset leaves
// enable unset so every base rule runs.
func presetIDs(preset string) (string, bool) {
	switch strings.ToLower(preset) {
	case "minimal":
		return strings.Join([]string{
			"SSN", "SSN_CONTEXT", "CREDIT_CARD", "CREDIT_CARD_CONTEXT",
			"AWS_KEY", "AWS_SECRET", "PRIVATE_KEY",
			"PASSWORD_FIELD", "PASSWORD_CONTEXT", "MEDICAL_RECORD",
			detectors.CustomKeyword,
		}, ","), false
	case "maximal":
		return "", true
	default:
		return "", false
	}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	enable := strings.TrimSpace(cfgEnable)
	extended := false
	if enable == "" {
		enable, extended = presetIDs(cfgPreset)
	}

	fc := config.FileConfig{
		MaxBytes:        int64Ptr(cfgMaxBytes),
		Enable:          optStrPtr(enable),
		Disable:         optStrPtr(cfgDisable),
		Threads:         intPtr(cfgThreads),
		MinScore:        floatPtr(cfgMinScore),
		NoColor:         boolPtr(cfgNoColor),
		DefaultExcludes: boolPtr(cfgDefaultExcludes),
		FailOn:          optStrPtr(cfgFailOn),
		Tenant:          optStrPtr(cfgTenant),
	}
	if extended {
		fc.Extended = boolPtr(true)
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", cfgOutput)
	return nil
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
