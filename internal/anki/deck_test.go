package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/wurdle/internal/testutil"
)

// writeCardDir creates a card directory the way the processor does
func writeCardDir(t *testing.T, root, name, word, created string, withSketch bool) {
	t.Helper()
	dir := filepath.Join(root, name)
	rec := record{
		Concept:       "a toaster that judges your life choices",
		Word:          word,
		Pronunciation: "/tohst-oh-kri-ti-siz-um/",
		Definition:    "The quiet disappointment of a kitchen appliance.",
		Discovery:     "First noticed at breakfast.",
		CreatedAt:     created,
	}
	if withSketch {
		rec.Sketch = "sketch.png"
		testutil.CreateTestFile(t, filepath.Join(dir, "sketch.png"), testutil.PNG(t, 2, 2))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	testutil.CreateTestFile(t, filepath.Join(dir, "word.json"), data)
}

func TestLoadCards(t *testing.T) {
	root := t.TempDir()
	writeCardDir(t, root, "2_bbb", "Gloopology", "2026-03-02T10:00:00Z", false)
	writeCardDir(t, root, "1_aaa", "Toastocriticism", "2026-03-01T10:00:00Z", true)
	testutil.CreateTestFile(t, filepath.Join(root, "broken", "word.json"), []byte("{"))
	testutil.CreateTestFile(t, filepath.Join(root, ".trashbin", "word.json"), []byte(`{"word":"hidden"}`))
	testutil.CreateTestFile(t, filepath.Join(root, "stray.txt"), []byte("x"))

	cards, err := LoadCards(root)
	if err != nil {
		t.Fatalf("LoadCards() error = %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	if cards[0].Word != "Toastocriticism" || cards[1].Word != "Gloopology" {
		t.Errorf("cards not ordered by creation: %s, %s", cards[0].Word, cards[1].Word)
	}
	if cards[0].SketchFile == "" || cards[1].SketchFile != "" {
		t.Errorf("sketch files = %q, %q", cards[0].SketchFile, cards[1].SketchFile)
	}
}

func TestLoadCardsMissingDir(t *testing.T) {
	if _, err := LoadCards(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDeckWrite(t *testing.T) {
	root := t.TempDir()
	writeCardDir(t, root, "1_aaa", "Toastocriticism", "2026-03-01T10:00:00Z", true)
	writeCardDir(t, root, "2_bbb", "Gloopology", "2026-03-02T10:00:00Z", false)
	cards, err := LoadCards(root)
	if err != nil {
		t.Fatal(err)
	}

	deck := NewDeck("Wurdle", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	deck.Add(cards...)
	if deck.Len() != 2 {
		t.Fatalf("Len() = %d", deck.Len())
	}

	out := filepath.Join(t.TempDir(), "wurdle.apkg")
	if err := deck.Write(out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	files := unzip(t, out)
	if _, ok := files["0"]; !ok {
		t.Error("sketch media file missing")
	}
	var mapping map[string]string
	if err := json.Unmarshal(files["media"], &mapping); err != nil {
		t.Fatalf("media mapping: %v", err)
	}
	if mapping["0"] != "1_aaa_sketch.png" {
		t.Errorf("media mapping = %v", mapping)
	}

	dbPath := filepath.Join(t.TempDir(), "collection.anki2")
	if err := os.WriteFile(dbPath, files["collection.anki2"], 0644); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var notes, cardCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if notes != 2 || cardCount != 4 {
		t.Errorf("notes = %d, cards = %d, want 2 and 4", notes, cardCount)
	}

	var flds string
	if err := db.QueryRow("SELECT flds FROM notes WHERE sfld = ?", "Toastocriticism").Scan(&flds); err != nil {
		t.Fatal(err)
	}
	fields := strings.Split(flds, "\x1f")
	if len(fields) != len(fieldNames) {
		t.Fatalf("fields = %d, want %d", len(fields), len(fieldNames))
	}
	if !strings.Contains(fields[5], `<img src="1_aaa_sketch.png">`) {
		t.Errorf("sketch field = %q", fields[5])
	}
}

func TestDeckWriteEmpty(t *testing.T) {
	err := NewDeck("Empty", time.Now()).Write(filepath.Join(t.TempDir(), "x.apkg"))
	if err == nil {
		t.Error("expected error for empty deck")
	}
}

func unzip(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open apkg: %v", err)
	}
	defer r.Close()

	files := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		files[f.Name] = data
	}
	return files
}
