package shadowscan

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/redactyl/shadowscan/internal/config"
	"github.com/redactyl/shadowscan/internal/store"
	"github.com/spf13/cobra"
)

// fileConfigs holds the local and global config files for one scan root.
type fileConfigs struct {
	local, global config.FileConfig
}

func loadConfigs(root string) fileConfigs {
	var c fileConfigs
	if g, err := config.LoadGlobal(); err == nil {
		c.global = g
	}
	if l, err := config.LoadLocal(root); err == nil {
		c.local = l
	}
	return c
}

func (c fileConfigs) storePath() string {
	if p := pickString(flagStore, c.local.Store, c.global.Store); p != "" {
		return p
	}
	return config.DefaultStorePath()
}

func (c fileConfigs) tenant() string {
	if t := pickString(flagTenant, c.local.Tenant, c.global.Tenant); t != "" {
		return t
	}
	return store.DefaultTenant
}

// isBoltPath reports whether p names a bbolt store rather than a JSON lines log.
func isBoltPath(p string) bool {
	return !strings.EqualFold(filepath.Ext(p), ".jsonl")
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickFloat(cli float64, local, global *float64) float64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

// pickBool uses the flag when it was set on the command line, then the local
// and global config, then the flag default.
func pickBool(cmd *cobra.Command, name string, cli bool, local, global *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

// cmdContext returns the command's context, or a background one when run
// without ExecuteContext.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
