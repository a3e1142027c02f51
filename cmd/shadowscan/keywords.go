package shadowscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redactyl/shadowscan/internal/keywords"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the tenant's custom keywords",
		Long:  "Custom keywords are stored per tenant in the bbolt store and flagged on every scan as CUSTOM_KEYWORD findings.",
	}
	rootCmd.AddCommand(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "add <keyword>...",
		Short: "Add keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeywordStore(func(s *store.Bolt, kc *keywords.Cached, tenant string) error {
				return editKeywords(cmdContext(cmd), os.Stderr, kc, tenant, func() error {
					for _, kw := range args {
						err := s.AddKeyword(tenant, kw)
						if errors.Is(err, store.ErrDuplicate) {
							fmt.Fprintf(os.Stderr, "already present: %s\n", kw)
							continue
						}
						if err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List keywords",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withKeywordStore(func(s *store.Bolt, _ *keywords.Cached, tenant string) error {
				kws, err := s.ListKeywords(tenant)
				if err != nil {
					return err
				}
				for _, kw := range kws {
					fmt.Println(kw)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <keyword>...",
		Short: "Remove keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeywordStore(func(s *store.Bolt, kc *keywords.Cached, tenant string) error {
				return editKeywords(cmdContext(cmd), os.Stderr, kc, tenant, func() error {
					for _, kw := range args {
						if err := s.RemoveKeyword(tenant, kw); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	})
}

// withKeywordStore opens the tenant's bbolt store and a cached keyword source
// reading from it.
func withKeywordStore(fn func(s *store.Bolt, kc *keywords.Cached, tenant string) error) error {
	cfgs := loadConfigs(".")
	p := cfgs.storePath()
	if !isBoltPath(p) {
		return fmt.Errorf("keywords need a bbolt store, got %s", p)
	}
	s, err := store.OpenBolt(p, logging.Component(logger, "store"))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s, keywords.NewCached(s, time.Minute), cfgs.tenant())
}

// editKeywords runs edit against the store, drops the tenant's cached entry
// and reports the keyword count before and after to w.
func editKeywords(ctx context.Context, w io.Writer, kc *keywords.Cached, tenant string, edit func() error) error {
	before, err := kc.Keywords(ctx, tenant)
	if err != nil {
		return err
	}
	editErr := edit()
	kc.Invalidate(tenant)
	after, err := kc.Keywords(ctx, tenant)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d keywords for tenant %s (was %d)\n", len(after), tenant, len(before))
	return editErr
}
