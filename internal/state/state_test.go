package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joescharf/cr/internal/ledger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Dir: t.TempDir()}
}

func TestLoad_Absent(t *testing.T) {
	s := testStore(t)

	st, err := s.Load("42")
	if err != nil {
		t.Fatalf("Load absent: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil state, got %+v", st)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := testStore(t)

	st := ledger.New([]ledger.FileChange{
		{Path: "cmd/main.go", Lines: 12},
		{Path: "internal/app/app.go", Lines: 30},
	})
	if _, err := st.MarkReviewed("cmd/main.go"); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(st, "42"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("42")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.TotalLines != st.TotalLines {
		t.Errorf("TotalLines = %d, want %d", got.TotalLines, st.TotalLines)
	}
	if len(got.Files) != 2 {
		t.Fatalf("Files = %d entries, want 2", len(got.Files))
	}
	if !got.Files["cmd/main.go"].Reviewed {
		t.Error("reviewed flag lost in round trip")
	}
	if got.Files["internal/app/app.go"].Lines != 30 {
		t.Error("line count lost in round trip")
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := testStore(t)

	if err := s.Save(ledger.New([]ledger.FileChange{{Path: "a", Lines: 1}}), "7"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ledger.New([]ledger.FileChange{{Path: "b", Lines: 9}}), "7"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load("7")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Files["a"]; ok {
		t.Error("old record leaked through overwrite")
	}
	if got.TotalLines != 9 {
		t.Errorf("TotalLines = %d, want 9", got.TotalLines)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s := testStore(t)

	if err := s.Save(ledger.New(nil), "3"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "3.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("state dir contents = %v, want [3.json]", names)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	s := testStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir, "42.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load("42")
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	removed, err := s.Delete("42")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("Delete reported removal of absent record")
	}

	if err := s.Save(ledger.New(nil), "42"); err != nil {
		t.Fatal(err)
	}
	removed, err = s.Delete("42")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("Delete did not report removal")
	}

	st, err := s.Load("42")
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Error("record still loadable after Delete")
	}
}
