package history

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pengelbrecht/calc/internal/calculator"
)

func TestStore_AppendList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, ".calc", "history.json"), 0)

	v, err := calculator.Divide(10, 4)
	if err := store.Append(NewEntry(calculator.OpDivide, 10, 4, v, err)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		t.Fatal("history file not created")
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Op != calculator.OpDivide || got.A != 10 || got.B != 4 || got.Result != 2.5 {
		t.Errorf("entry mismatch: %+v", got)
	}
	if got.At.IsZero() {
		t.Error("entry timestamp not set")
	}
}

func TestStore_RecordsErrors(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)

	v, err := calculator.Divide(1, 0)
	if err := store.Append(NewEntry(calculator.OpDivide, 1, 0, v, err)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	last, err := store.Last()
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if last.Error != "cannot divide by zero" {
		t.Errorf("Error = %q, want %q", last.Error, "cannot divide by zero")
	}
}

func TestStore_TrimsToMaxEntries(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 3)

	for i := 1; i <= 5; i++ {
		a := float64(i)
		if err := store.Append(NewEntry(calculator.OpAdd, a, a, a+a, nil)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].A != 3 || entries[2].A != 5 {
		t.Errorf("expected entries 3..5, got first=%v last=%v", entries[0].A, entries[2].A)
	}
}

func TestStore_EmptyAndClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List on missing file failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
	if _, err := store.Last(); err != ErrEmpty {
		t.Errorf("Last() error = %v, want ErrEmpty", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}

	if err := store.Append(NewEntry(calculator.OpAdd, 1, 2, 3, nil)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("history file still exists after Clear")
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(path, 0)
	if _, err := store.List(); err == nil {
		t.Error("expected error for corrupt history")
	}
}

func TestStore_NonFiniteValues(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)

	inf := calculator.Power(10, 400)
	nan := calculator.Power(-8, 0.5)
	if err := store.Append(NewEntry(calculator.OpPower, 10, 400, inf, nil)); err != nil {
		t.Fatalf("Append(+Inf) failed: %v", err)
	}
	if err := store.Append(NewEntry(calculator.OpPower, -8, 0.5, nan, nil)); err != nil {
		t.Fatalf("Append(NaN) failed: %v", err)
	}
	if err := store.Append(NewEntry(calculator.OpAdd, math.Inf(-1), 1, math.Inf(-1), nil)); err != nil {
		t.Fatalf("Append(-Inf) failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	for _, want := range []string{`"result": "+Inf"`, `"result": "NaN"`, `"a": "-Inf"`, `"b": 400`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("history file missing %s:\n%s", want, data)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !math.IsInf(entries[0].Result, 1) {
		t.Errorf("entries[0].Result = %v, want +Inf", entries[0].Result)
	}
	if !math.IsNaN(entries[1].Result) {
		t.Errorf("entries[1].Result = %v, want NaN", entries[1].Result)
	}
	if !math.IsInf(entries[2].A, -1) || !math.IsInf(entries[2].Result, -1) || entries[2].B != 1 {
		t.Errorf("entries[2] = %+v, want -Inf operand and result", entries[2])
	}
	if entries[0].Op != calculator.OpPower || entries[0].At.IsZero() {
		t.Errorf("entries[0] = %+v, op or timestamp lost", entries[0])
	}
}

func TestStore_InvalidNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	content := `[{"op":"add","a":"lots","b":1,"result":1,"at":"2026-01-02T03:04:05Z"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewStore(path, 0).List(); err == nil {
		t.Error("expected error for non-numeric operand")
	}
}

func TestStore_AppendAll(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.json"), 4)

	if err := store.Append(NewEntry(calculator.OpAdd, 0, 0, 0, nil)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	var batch []Entry
	for i := 1; i <= 4; i++ {
		a := float64(i)
		batch = append(batch, NewEntry(calculator.OpMultiply, a, 2, a*2, nil))
	}
	if err := store.AppendAll(batch); err != nil {
		t.Fatalf("AppendAll failed: %v", err)
	}
	if err := store.AppendAll(nil); err != nil {
		t.Fatalf("AppendAll(nil) failed: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Op != calculator.OpMultiply || e.A != float64(i+1) {
			t.Errorf("entries[%d] = %+v, want multiply %d", i, e, i+1)
		}
	}
}
