package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/redactyl/shadowscan/internal/report"
)

// JSONL is an append-only JSON lines report store. It suits CI jobs that keep
// the file as a build artifact.
type JSONL struct {
	mu   sync.Mutex
	path string
}

func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

func (j *JSONL) Close() error { return nil }

// load returns every record in file order. Unreadable lines are skipped.
func (j *JSONL) load() ([]report.Report, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open report log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []report.Report
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var r report.Report
		if err := decoder.Decode(&r); err != nil {
			break
		}
		records = append(records, r)
	}
	return records, nil
}

func (j *JSONL) SaveReport(r *report.Report) error {
	prepare(r)
	j.mu.Lock()
	defer j.mu.Unlock()
	// owner-only: reports carry finding metadata
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open report log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (j *JSONL) ListReports(tenant string) ([]report.Report, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	records, err := j.load()
	if err != nil {
		return nil, err
	}
	tenant = tenantOrDefault(tenant)
	out := []report.Report{}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Tenant == tenant {
			out = append(out, records[i])
		}
	}
	return out, nil
}

func (j *JSONL) GetReport(tenant, id string) (report.Report, error) {
	reports, err := j.ListReports(tenant)
	if err != nil {
		return report.Report{}, err
	}
	for _, r := range reports {
		if r.ID == id {
			return r, nil
		}
	}
	return report.Report{}, ErrNotFound
}

// DeleteReport rewrites the log without the matching record.
func (j *JSONL) DeleteReport(tenant, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	records, err := j.load()
	if err != nil {
		return err
	}
	tenant = tenantOrDefault(tenant)
	kept := records[:0]
	found := false
	for _, r := range records {
		if r.Tenant == tenant && r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrNotFound
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("rewrite report log: %w", err)
	}
	defer func() { _ = f.Close() }()
	encoder := json.NewEncoder(f)
	for _, r := range kept {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
