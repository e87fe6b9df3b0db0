package journal_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HendryAvila/agentrc/internal/journal"
)

func newTestJournal(t *testing.T, maxEntries int) *journal.Journal {
	t.Helper()
	j, err := journal.New(journal.Config{DataDir: t.TempDir(), MaxEntries: maxEntries})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	j, err := journal.New(journal.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(filepath.Join(dir, "journal.db")); err != nil {
		t.Errorf("journal.db not created: %v", err)
	}
}

func TestNew_OpenFailure(t *testing.T) {
	restore := journal.SetOpenDB(func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	})
	defer restore()

	if _, err := journal.New(journal.Config{DataDir: t.TempDir()}); err == nil {
		t.Fatal("expected error when the driver cannot open")
	}
}

func TestSessions_StartAndEnd(t *testing.T) {
	j := newTestJournal(t, 0)

	if err := j.StartSession("s1", "web", "/src/web"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	// Starting twice keeps the first row.
	if err := j.StartSession("s1", "other", "/elsewhere"); err != nil {
		t.Fatalf("StartSession again: %v", err)
	}

	s, err := j.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.Project != "web" || s.EndedAt != nil {
		t.Errorf("session = %+v", s)
	}

	if err := j.EndSession("s1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	s, _ = j.GetSession("s1")
	if s.EndedAt == nil {
		t.Error("EndedAt should be set after EndSession")
	}
}

func TestRecord_CreatesSessionOnDemand(t *testing.T) {
	j := newTestJournal(t, 0)

	if _, err := j.Record("orphan", journal.KindRewrite, "bash", "npm test -> make test"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := j.GetSession("orphan"); err != nil {
		t.Errorf("session row not created: %v", err)
	}
}

func TestRecent_OrderAndFilter(t *testing.T) {
	j := newTestJournal(t, 0)
	_, _ = j.Record("a", journal.KindMemory, "memory", "add X")
	_, _ = j.Record("b", journal.KindDenied, "read", ".env")
	_, _ = j.Record("a", journal.KindRewrite, "bash", "npm test")

	all, err := j.Recent("", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 || all[0].Detail != "npm test" || all[2].Detail != "add X" {
		t.Errorf("Recent(all) = %+v", all)
	}

	onlyA, _ := j.Recent("a", 10)
	if len(onlyA) != 2 {
		t.Fatalf("Recent(a) len = %d, want 2", len(onlyA))
	}
	if onlyA[0].Kind != journal.KindRewrite {
		t.Errorf("Kind = %s", onlyA[0].Kind)
	}

	limited, _ := j.Recent("", 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d entries", len(limited))
	}
}

func TestRecord_PrunesPerSession(t *testing.T) {
	j := newTestJournal(t, 2)
	for _, d := range []string{"1", "2", "3"} {
		if _, err := j.Record("s", journal.KindMemory, "memory", d); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	var n int
	if err := j.DB().QueryRow(`SELECT COUNT(*) FROM entries WHERE session_id = 's'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("entries kept = %d, want 2", n)
	}
	got, _ := j.Recent("s", 10)
	if got[len(got)-1].Detail != "2" {
		t.Errorf("oldest kept = %q, want 2", got[len(got)-1].Detail)
	}
}

func TestClosed(t *testing.T) {
	j, err := journal.New(journal.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := j.Record("s", journal.KindInit, "", ""); !errors.Is(err, journal.ErrClosed) {
		t.Errorf("Record after Close = %v, want ErrClosed", err)
	}
	var nilJournal *journal.Journal
	if err := nilJournal.Close(); err != nil {
		t.Errorf("nil Close = %v", err)
	}
}
