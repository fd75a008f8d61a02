package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Deck builds an Anki package. Each word yields a forward card (word to
// definition) and a reverse card (concept to word).
type Deck struct {
	name    string
	deckID  int64
	modelID int64
	now     time.Time
	cards   []Card

	media map[string]int // maps media filename to its number in the package
}

// NewDeck creates an empty deck. IDs derive from now.
func NewDeck(name string, now time.Time) *Deck {
	ms := now.UnixMilli()
	return &Deck{
		name:    name,
		deckID:  ms,
		modelID: ms + 1,
		now:     now,
		media:   make(map[string]int),
	}
}

// Add adds a card to the deck
func (d *Deck) Add(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// Len returns the number of words in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Write creates the .apkg file at outputPath
func (d *Deck) Write(outputPath string) error {
	if len(d.cards) == 0 {
		return fmt.Errorf("deck %q has no cards", d.name)
	}

	tempDir, err := os.MkdirTemp("", "wurdle_anki_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Media first, the notes refer to the numbered files
	if err := d.copyMedia(tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}
	if err := d.writeMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}
	if err := d.createDatabase(filepath.Join(tempDir, "collection.anki2")); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if err := zipDirectory(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

// mediaName is unique per card directory, as every sketch is called sketch.png
func mediaName(sketchFile string) string {
	return filepath.Base(filepath.Dir(sketchFile)) + "_" + filepath.Base(sketchFile)
}

func (d *Deck) copyMedia(tempDir string) error {
	for _, card := range d.cards {
		if card.SketchFile == "" {
			continue
		}
		name := mediaName(card.SketchFile)
		if _, ok := d.media[name]; ok {
			continue
		}
		num := len(d.media)
		if err := copyFile(card.SketchFile, filepath.Join(tempDir, strconv.Itoa(num))); err != nil {
			return fmt.Errorf("failed to copy %s: %w", card.SketchFile, err)
		}
		d.media[name] = num
	}
	return nil
}

func (d *Deck) writeMediaMapping(tempDir string) error {
	mapping := make(map[string]string, len(d.media))
	for name, num := range d.media {
		mapping[strconv.Itoa(num)] = name
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

func (d *Deck) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	if err := d.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	if err := d.insertNotes(db); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

type jsonMap = map[string]any

func (d *Deck) deckConfig(id int64, name, desc string) jsonMap {
	return jsonMap{
		"id": id, "name": name, "desc": desc, "mod": d.now.Unix(),
		"collapsed": false, "dyn": 0, "conf": 1, "usn": 0,
		"newToday": []int{0, 0}, "revToday": []int{0, 0},
		"lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
		"extendNew": 10, "extendRev": 50,
	}
}

func (d *Deck) insertCollection(db *sql.DB) error {
	now := d.now.Unix()

	deckMap := jsonMap{"1": d.deckConfig(1, "Default", "")}
	deckMap[strconv.FormatInt(d.deckID, 10)] = d.deckConfig(d.deckID, d.name, "Words forged by wurdle")
	decks, err := json.Marshal(deckMap)
	if err != nil {
		return err
	}
	models, err := json.Marshal(jsonMap{strconv.FormatInt(d.modelID, 10): d.noteType()})
	if err != nil {
		return err
	}
	conf, err := json.Marshal(jsonMap{
		"nextPos": 1, "estTimes": true, "activeDecks": []int64{1},
		"sortType": "noteFld", "sortBackwards": false, "addToCur": true,
		"curDeck": 1, "newSpread": 0, "dueCounts": true, "collapseTime": 1200,
		"timeLim": 0, "schedVer": 1, "curModel": strconv.FormatInt(d.modelID, 10),
	})
	if err != nil {
		return err
	}
	dconf, err := json.Marshal(jsonMap{"1": jsonMap{
		"id": 1, "name": "Default", "dyn": 0, "usn": 0, "mod": now,
		"new": jsonMap{
			"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500,
			"perDay": 20, "order": 1, "bury": true, "separate": true,
		},
		"lapse": jsonMap{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
		"rev": jsonMap{
			"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500,
			"ivlFct": 1, "bury": true, "minSpace": 1,
		},
		"timer": 0, "maxTaken": 60, "autoplay": true, "replayq": true,
	}})
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, now, now*1000, now*1000,
		11, // schema version
		0, 0, 0,
		string(conf), string(models), string(decks), string(dconf), "{}",
	)
	return err
}

// fieldNames are the note fields in order
var fieldNames = []string{"Word", "Pronunciation", "Definition", "Discovery", "Concept", "Sketch"}

func (d *Deck) noteType() jsonMap {
	fields := make([]jsonMap, len(fieldNames))
	for i, name := range fieldNames {
		fields[i] = jsonMap{"name": name, "ord": i, "sticky": false, "rtl": false, "font": "Arial", "size": 20, "media": []string{}}
	}
	return jsonMap{
		"id": d.modelID, "name": "Wurdle (Word + Concept)", "type": 0,
		"mod": d.now.Unix(), "usn": -1, "sortf": 0, "did": d.deckID,
		"req": []any{[]any{0, "all", []int{0}}, []any{1, "all", []int{4}}},
		"vers": []int{}, "tags": []string{},
		"flds": fields,
		"tmpls": []jsonMap{
			{"name": "Word", "ord": 0, "qfmt": frontTemplate, "afmt": backTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
			{"name": "Concept", "ord": 1, "qfmt": conceptTemplate, "afmt": conceptBackTemplate, "did": nil, "bqfmt": "", "bafmt": ""},
		},
		"css":       css,
		"latexPre":  "",
		"latexPost": "",
	}
}

const frontTemplate = `<div class="word">{{Word}}</div>
<div class="pron">{{Pronunciation}}</div>`

const backTemplate = `{{FrontSide}}
<hr id="answer">
{{#Sketch}}<div class="sketch">{{Sketch}}</div>{{/Sketch}}
<div class="definition">{{Definition}}</div>
{{#Discovery}}<div class="discovery">{{Discovery}}</div>{{/Discovery}}`

const conceptTemplate = `<div class="concept">{{Concept}}</div>`

const conceptBackTemplate = `{{FrontSide}}
<hr id="answer">
<div class="word">{{Word}}</div>
<div class="pron">{{Pronunciation}}</div>
{{#Sketch}}<div class="sketch">{{Sketch}}</div>{{/Sketch}}`

const css = `.card { font-family: Arial, sans-serif; font-size: 20px; text-align: center; color: #111; background: #FAF7F0; }
.word { font-size: 34px; font-weight: bold; text-transform: lowercase; }
.pron { color: #666; margin-top: 6px; }
.concept { font-size: 24px; font-style: italic; }
.definition { margin: 16px 0; }
.discovery { font-size: 16px; color: #555; font-style: italic; }
.sketch img { max-width: 100%; height: auto; border-radius: 8px; }
hr#answer { margin: 24px 0; border: 0; border-top: 1px solid #ddd; }`

func (d *Deck) insertNotes(db *sql.DB) error {
	base := d.now.UnixMilli()
	mod := d.now.Unix()

	for i, card := range d.cards {
		// Leave space for two cards per note
		noteID := base + int64(i*3)

		sketch := ""
		if card.SketchFile != "" {
			if _, ok := d.media[mediaName(card.SketchFile)]; ok {
				sketch = fmt.Sprintf(`<img src="%s">`, html.EscapeString(mediaName(card.SketchFile)))
			}
		}
		fields := strings.Join([]string{
			html.EscapeString(card.Word),
			html.EscapeString(card.Pronunciation),
			html.EscapeString(card.Definition),
			html.EscapeString(card.Discovery),
			html.EscapeString(card.Concept),
			sketch,
		}, "\x1f") // Anki's field separator

		guid := fmt.Sprintf("wurdle_%s", strings.ToLower(card.Word))
		if _, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID, guid, d.modelID, mod, -1, "wurdle", fields, card.Word, 0, 0, "",
		); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		for ord := range 2 {
			cardID := noteID + 1 + int64(ord)
			// due is the position of a new card and must be unique
			if _, err := db.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				cardID, noteID, d.deckID, ord, mod, -1,
				0, 0, noteID+int64(ord), // new card
				0, 0, 0, 0, 0, 0, 0, 0, "",
			); err != nil {
				return fmt.Errorf("failed to insert card %d: %w", ord, err)
			}
		}
	}
	return nil
}

func zipDirectory(dir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	archive := zip.NewWriter(out)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w, err := archive.Create(entry.Name())
		if err != nil {
			return err
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return archive.Close()
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
