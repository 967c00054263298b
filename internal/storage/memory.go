package storage

import (
	"context"
	"sync"

	"github.com/vgmedical/surgiverify/internal/record"
)

// Memory is a thread-safe in-memory Storage, used by tests and by
// deployments without a database.
type Memory struct {
	mu           sync.RWMutex
	cases        map[string]record.Case
	records      map[string]map[record.Variant]record.Record // caseID -> variant -> record
	reports      map[string]record.VerificationReport
	equivalences map[string]record.EquivalenceEntry // canonical name -> entry
}

func NewMemory() *Memory {
	return &Memory{
		cases:        make(map[string]record.Case),
		records:      make(map[string]map[record.Variant]record.Record),
		reports:      make(map[string]record.VerificationReport),
		equivalences: make(map[string]record.EquivalenceEntry),
	}
}

func (m *Memory) CreateCase(_ context.Context, c *record.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.ID] = *c
	return nil
}

func (m *Memory) GetCase(_ context.Context, id string) (*record.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) UpdateCase(_ context.Context, c *record.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[c.ID]; !ok {
		return ErrNotFound
	}
	m.cases[c.ID] = *c
	return nil
}

func (m *Memory) SaveRecord(_ context.Context, caseID string, rec *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byVariant, ok := m.records[caseID]
	if !ok {
		byVariant = make(map[record.Variant]record.Record, 3)
		m.records[caseID] = byVariant
	}
	byVariant[rec.Variant] = *rec
	return nil
}

func (m *Memory) LoadRecordsForCase(_ context.Context, caseID string) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byVariant := m.records[caseID]
	records := make([]record.Record, 0, len(byVariant))
	for _, v := range record.Variants {
		if rec, ok := byVariant[v]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *Memory) UpsertReport(_ context.Context, caseID string, rep *record.VerificationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[caseID] = *rep
	return nil
}

func (m *Memory) LoadReport(_ context.Context, caseID string) (*record.VerificationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.reports[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rep, nil
}

func (m *Memory) LoadEquivalenceTable(_ context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table := make(map[string][]string, len(m.equivalences))
	for canonical, entry := range m.equivalences {
		table[canonical] = append([]string(nil), entry.Aliases...)
	}
	return table, nil
}

func (m *Memory) LoadEquivalenceEntry(_ context.Context, canonicalName string) (*record.EquivalenceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.equivalences[canonicalName]
	if !ok {
		return nil, nil
	}
	cp := entry
	cp.Aliases = append([]string(nil), entry.Aliases...)
	return &cp, nil
}

func (m *Memory) SaveEquivalenceEntry(_ context.Context, entry *record.EquivalenceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	cp.Aliases = append([]string(nil), entry.Aliases...)
	m.equivalences[entry.CanonicalName] = cp
	return nil
}

// ReportCount reports how many cases currently have a report. Test helper.
func (m *Memory) ReportCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

// CaseCount reports how many cases are stored. Test helper.
func (m *Memory) CaseCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cases)
}
