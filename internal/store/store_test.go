package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redactyl/shadowscan/internal/report"
	"github.com/redactyl/shadowscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(tenant string, at time.Time, n int) report.Report {
	fs := make([]types.Finding, n)
	for i := range fs {
		fs[i] = types.Finding{Type: "EMAIL", Pattern: "Email Address", Value: "a@b.io", Severity: types.SevHigh, Location: types.Location{Line: i + 1, Column: 1}}
	}
	return report.New(tenant, fs, report.Source{Root: "."}, at)
}

// exercise runs the shared Reports contract against a store implementation.
func exercise(t *testing.T, s Reports) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := sampleReport("acme", base, 1)
	second := sampleReport("acme", base.Add(time.Minute), 2)
	other := sampleReport("", base, 3)
	for _, r := range []*report.Report{&first, &second, &other} {
		require.NoError(t, s.SaveReport(r))
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, DefaultTenant, other.Tenant)

	list, err := s.ListReports("acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	list, err = s.ListReports("")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Findings, 3)

	list, err = s.ListReports("nobody")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := s.GetReport("acme", first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, got.Summary)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	_, err = s.GetReport("globex", first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteReport("acme", first.ID))
	assert.ErrorIs(t, s.DeleteReport("acme", first.ID), ErrNotFound)
	list, err = s.ListReports("acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestBolt_Reports(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data", "shadowscan.db"), nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, ok := s.(*Bolt)
	require.True(t, ok)
	exercise(t, s)
}

func TestJSONL_Reports(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "reports.jsonl"), nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, ok := s.(*JSONL)
	require.True(t, ok)
	exercise(t, s)
}

func TestBolt_ReopenKeepsData(t *testing.T) {
	p := filepath.Join(t.TempDir(), "shadowscan.db")
	s, err := OpenBolt(p, nil)
	require.NoError(t, err)
	r := sampleReport("acme", time.Now(), 1)
	require.NoError(t, s.SaveReport(&r))
	require.NoError(t, s.AddKeyword("acme", "Falcon"))
	require.NoError(t, s.Close())

	s, err = OpenBolt(p, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	list, err := s.ListReports("acme")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	kws, err := s.ListKeywords("acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Falcon"}, kws)
}

func TestBolt_Keywords(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "kw.db"), nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.AddKeyword("acme", "Project Falcon"))
	require.NoError(t, s.AddKeyword("acme", "osprey"))
	require.NoError(t, s.AddKeyword("globex", "falcon"))
	assert.ErrorIs(t, s.AddKeyword("acme", " project falcon "), ErrDuplicate)
	assert.Error(t, s.AddKeyword("acme", "  "))

	got, err := s.Keywords(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"osprey", "Project Falcon"}, got)

	require.NoError(t, s.RemoveKeyword("acme", "PROJECT FALCON"))
	assert.ErrorIs(t, s.RemoveKeyword("acme", "project falcon"), ErrNotFound)
	assert.ErrorIs(t, s.RemoveKeyword("initech", "x"), ErrNotFound)

	got, err = s.ListKeywords("acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"osprey"}, got)

	got, err = s.ListKeywords("initech")
	require.NoError(t, err)
	assert.Empty(t, got)
}
