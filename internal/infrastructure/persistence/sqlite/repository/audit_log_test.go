package repository

import (
	"context"
	"testing"
	"time"

	"radassist/internal/domain/reference"
)

func setupAuditLog(t *testing.T) *AuditLog {
	t.Helper()
	db, mgr := setupDB(t)
	return NewAuditLog(db, mgr)
}

func auditEntryAt(action reference.Action, tissue string, ts time.Time) reference.AuditEntry {
	return reference.AuditEntry{
		Action:    action,
		Tissue:    tissue,
		AlphaBeta: 3,
		Timestamp: ts,
	}
}

func TestAuditLogAppendDefaultsTimestamp(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	id, err := log.Append(ctx, reference.AuditEntry{Action: reference.ActionAdd, Tissue: "Liver", AlphaBeta: 2})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id == 0 {
		t.Fatalf("Append() id = 0")
	}

	entries, err := log.Recent(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() len = %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(fixed) {
		t.Fatalf("Recent() timestamp = %v, want %v", entries[0].Timestamp, fixed)
	}
}

func TestAuditLogRecentOrderAndPaging(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := auditEntryAt(reference.ActionAdd, "Liver", base.Add(time.Duration(i)*time.Hour))
		if _, err := log.Append(ctx, entry); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	page, err := log.Recent(ctx, 2, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Recent() len = %d", len(page))
	}
	if !page[0].Timestamp.Equal(base.Add(3 * time.Hour)) {
		t.Fatalf("Recent() first timestamp = %v", page[0].Timestamp)
	}
	if !page[1].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("Recent() second timestamp = %v", page[1].Timestamp)
	}
}

func TestAuditLogQueryWindow(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		entry := auditEntryAt(reference.ActionAdd, "Liver", base.AddDate(0, 0, i))
		if _, err := log.Append(ctx, entry); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	// Start inclusive, end exclusive.
	entries, err := log.Query(ctx, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Query() len = %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(base.AddDate(0, 0, 2)) || !entries[1].Timestamp.Equal(base.AddDate(0, 0, 1)) {
		t.Fatalf("Query() timestamps = %v, %v", entries[0].Timestamp, entries[1].Timestamp)
	}
}

func TestAuditLogOrdersMixedPrecisionTimestamps(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	// Fractional seconds of different widths must still sort chronologically.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := auditEntryAt(reference.ActionAdd, "older", base.Add(120*time.Millisecond))
	newer := auditEntryAt(reference.ActionAdd, "newer", base.Add(123*time.Millisecond+456*time.Microsecond))
	if _, err := log.Append(ctx, older); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := log.Append(ctx, newer); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := log.Recent(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent() len = %d", len(entries))
	}
	if entries[0].Tissue != "newer" || entries[1].Tissue != "older" {
		t.Fatalf("Recent() order = %q, %q", entries[0].Tissue, entries[1].Tissue)
	}

	removed, err := log.Trim(ctx, newer.Timestamp)
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("Trim() removed = %d", removed)
	}
	count, err := log.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("Count() after trim = %d", count)
	}
}

func TestAuditLogPreviousFieldsRoundTrip(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	previousTissue := "Lung"
	previousAlphaBeta := 3.0
	previousDescription := "old description"
	if _, err := log.Append(ctx, reference.AuditEntry{
		Action:              reference.ActionUpdate,
		Tissue:              "Lung (late effects)",
		AlphaBeta:           3.5,
		Description:         "new description",
		PreviousTissue:      &previousTissue,
		PreviousAlphaBeta:   &previousAlphaBeta,
		PreviousDescription: &previousDescription,
		Timestamp:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := log.Recent(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	entry := entries[0]
	if entry.PreviousTissue == nil || *entry.PreviousTissue != previousTissue {
		t.Fatalf("Recent() previous tissue = %v", entry.PreviousTissue)
	}
	if entry.PreviousAlphaBeta == nil || *entry.PreviousAlphaBeta != previousAlphaBeta {
		t.Fatalf("Recent() previous alpha/beta = %v", entry.PreviousAlphaBeta)
	}
	if entry.PreviousDescription == nil || *entry.PreviousDescription != previousDescription {
		t.Fatalf("Recent() previous description = %v", entry.PreviousDescription)
	}
}

func TestAuditLogTrim(t *testing.T) {
	log := setupAuditLog(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		entry := auditEntryAt(reference.ActionAdd, "Liver", base.AddDate(0, 0, i))
		if _, err := log.Append(ctx, entry); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	removed, err := log.Trim(ctx, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("Trim() removed = %d", removed)
	}

	count, err := log.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("Count() after trim = %d", count)
	}
}
