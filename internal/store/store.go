// Package store persists scan reports and per-tenant custom keywords.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/sirupsen/logrus"
)

// Common errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// DefaultTenant is used when no tenant is given.
const DefaultTenant = "default"

// Reports stores scan reports per tenant.
type Reports interface {
	// SaveReport assigns r an ID (when empty) and persists it.
	SaveReport(r *report.Report) error
	// ListReports returns the reports of tenant, newest first.
	ListReports(tenant string) ([]report.Report, error)
	GetReport(tenant, id string) (report.Report, error)
	DeleteReport(tenant, id string) error
	Close() error
}

// Open opens the report store at path. Paths ending in .jsonl use the
// append-only JSON lines store; anything else is a bbolt database.
func Open(path string, log *logrus.Entry) (Reports, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return NewJSONL(path), nil
	}
	return OpenBolt(path, log)
}

func tenantOrDefault(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return DefaultTenant
	}
	return t
}

// prepare fills in the identity fields of a report before it is written.
func prepare(r *report.Report) {
	r.Tenant = tenantOrDefault(r.Tenant)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = ulid.MustNew(ulid.Timestamp(r.CreatedAt), ulid.DefaultEntropy()).String()
	}
}

func logOrNop(log *logrus.Entry) *logrus.Entry {
	if log == nil {
		return logging.Nop()
	}
	return log
}
