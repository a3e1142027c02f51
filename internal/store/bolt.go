package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redactyl/shadowscan/internal/keywords"
	"github.com/redactyl/shadowscan/internal/report"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// Bucket names. Each holds one nested bucket per tenant.
var (
	BucketReports  = []byte("reports")
	BucketKeywords = []byte("keywords")
)

// Bolt is a bbolt-backed store for reports and keywords. Report keys are
// ULIDs, so cursor order is creation order.
type Bolt struct {
	db  *bolt.DB
	log *logrus.Entry
}

// OpenBolt opens or creates the database at path, creating its directory.
func OpenBolt(path string, log *logrus.Entry) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketReports, BucketKeywords} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize store buckets: %w", err)
	}
	return &Bolt{db: db, log: logOrNop(log)}, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

// tenantBucket returns the tenant's bucket under root, or nil when it does not
// exist and create is false.
func tenantBucket(tx *bolt.Tx, root []byte, tenant string, create bool) (*bolt.Bucket, error) {
	b := tx.Bucket(root)
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", root)
	}
	key := []byte(tenantOrDefault(tenant))
	if create {
		return b.CreateBucketIfNotExists(key)
	}
	return b.Bucket(key), nil
}

func (s *Bolt) SaveReport(r *report.Report) error {
	prepare(r)
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketReports, r.Tenant, true)
		if err != nil {
			return err
		}
		return b.Put([]byte(r.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	s.log.WithFields(logrus.Fields{"tenant": r.Tenant, "id": r.ID, "findings": len(r.Findings)}).Debug("report saved")
	return nil
}

func (s *Bolt) ListReports(tenant string) ([]report.Report, error) {
	out := []report.Report{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketReports, tenant, false)
		if err != nil || b == nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r report.Report
			if err := json.Unmarshal(v, &r); err != nil {
				s.log.WithError(err).WithField("id", string(k)).Warn("skipping unreadable report")
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func (s *Bolt) GetReport(tenant, id string) (report.Report, error) {
	var r report.Report
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketReports, tenant, false)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &r)
	})
	return r, err
}

func (s *Bolt) DeleteReport(tenant, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketReports, tenant, false)
		if err != nil {
			return err
		}
		if b == nil || b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// AddKeyword stores kw for tenant. Keywords are unique per tenant regardless
// of case; the first spelling is kept.
func (s *Bolt) AddKeyword(tenant, kw string) error {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return fmt.Errorf("keyword is empty")
	}
	key := []byte(strings.ToLower(kw))
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketKeywords, tenant, true)
		if err != nil {
			return err
		}
		if b.Get(key) != nil {
			return fmt.Errorf("keyword %q: %w", kw, ErrDuplicate)
		}
		return b.Put(key, []byte(kw))
	})
}

// ListKeywords returns the tenant's keywords ordered case-insensitively.
func (s *Bolt) ListKeywords(tenant string) ([]string, error) {
	out := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketKeywords, tenant, false)
		if err != nil || b == nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			out = append(out, string(v))
			return nil
		})
	})
	return out, err
}

func (s *Bolt) RemoveKeyword(tenant, kw string) error {
	key := []byte(strings.ToLower(strings.TrimSpace(kw)))
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tenantBucket(tx, BucketKeywords, tenant, false)
		if err != nil {
			return err
		}
		if b == nil || b.Get(key) == nil {
			return fmt.Errorf("keyword %q: %w", kw, ErrNotFound)
		}
		return b.Delete(key)
	})
}

// Keywords implements keywords.Source.
func (s *Bolt) Keywords(_ context.Context, tenant string) ([]string, error) {
	return s.ListKeywords(tenant)
}

var _ keywords.Source = (*Bolt)(nil)
