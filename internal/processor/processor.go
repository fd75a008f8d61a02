package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/wurdle/internal"
	"codeberg.org/snonux/wurdle/internal/anki"
	"codeberg.org/snonux/wurdle/internal/batch"
	"codeberg.org/snonux/wurdle/internal/cli"
	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/generation"
	"codeberg.org/snonux/wurdle/internal/gui"
	"codeberg.org/snonux/wurdle/internal/logx"
	"codeberg.org/snonux/wurdle/internal/quota"
	"codeberg.org/snonux/wurdle/internal/sharecard"
	"codeberg.org/snonux/wurdle/internal/store"
)

// Card directory file names
const (
	conceptFile = "concept.txt"
	wordFile    = "word.json"
	cardFile    = "card.png"
	shareFile   = "share.txt"
)

// Anki export
const (
	deckName = "Wurdle"
	deckFile = "wurdle.apkg"
)

// Generator forges a result for a concept
type Generator interface {
	Generate(ctx context.Context, text string) (*concept.Result, error)
}

// CardComposer renders the share card of a result
type CardComposer interface {
	Compose(ctx context.Context, r *concept.Result) (*sharecard.Asset, error)
}

// Processor handles headless generation and launches the GUI
type Processor struct {
	flags    *cli.Flags
	creds    cli.Credentials
	kv       store.KV
	quota    *quota.Tracker
	gen      Generator
	composer CardComposer
	out      io.Writer
}

// Summary counts the outcome of a batch run
type Summary struct {
	Total     int
	Processed int
	Skipped   int
	Invalid   int
	Errors    int
}

// NewProcessor opens the state store and quota tracker. Generation
// providers are connected lazily since the GUI can start without keys.
func NewProcessor(ctx context.Context, flags *cli.Flags, creds cli.Credentials) (*Processor, error) {
	if flags.StoreBackend == "" || flags.StoreBackend == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(flags.StorePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	kv, err := store.Open(ctx, store.Config{
		Backend:  flags.StoreBackend,
		Path:     flags.StorePath,
		RedisURL: flags.RedisURL,
	})
	if err != nil {
		logx.Warn().Err(err).Msg("state store unavailable, quota is kept in memory")
		kv = store.NewMemory()
	}

	return &Processor{
		flags: flags,
		creds: creds,
		kv:    kv,
		quota: quota.NewTracker(kv, flags.DailyLimit),
		out:   os.Stdout,
	}, nil
}

// Close releases the state store
func (p *Processor) Close() error {
	return p.kv.Close()
}

// connect builds the generator and card composer on first use
func (p *Processor) connect(ctx context.Context) error {
	if p.gen != nil {
		return nil
	}
	provider, err := generation.NewProvider(ctx, p.generationConfig())
	if err != nil {
		return err
	}
	p.gen = generation.NewGuardedOrchestrator(provider, p.quota)

	if !p.flags.NoCard {
		var hoster sharecard.Hoster
		if p.creds.ImgBBAPIKey != "" {
			hoster = sharecard.NewImgBBHoster(p.flags.HostURL, p.creds.ImgBBAPIKey)
		}
		composer, err := sharecard.NewComposer(hoster)
		if err != nil {
			return err
		}
		p.composer = composer
	}
	return nil
}

func (p *Processor) generationConfig() generation.Config {
	return generation.Config{
		Provider:   p.flags.Provider,
		WordModel:  p.flags.WordModel,
		ImageModel: p.flags.ImageModel,
		GeminiKey:  p.creds.GeminiAPIKey,
		OpenAIKey:  p.creds.OpenAIAPIKey,
	}
}

// ProcessSingle forges one concept and saves its card directory
func (p *Processor) ProcessSingle(ctx context.Context, text string) (string, error) {
	if !concept.Valid(text) {
		return "", errx.New(errx.ValidationFailed, "process",
			fmt.Errorf("describe the concept in at least %d words", concept.MinWords))
	}
	if err := p.connect(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(p.out, "\nForging: %s\n", text)
	return p.process(ctx, text)
}

func (p *Processor) process(ctx context.Context, text string) (string, error) {
	r, err := p.gen.Generate(ctx, text)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "  %s %s\n  %s\n", r.Word, r.Pronunciation, r.Definition)

	dir := filepath.Join(p.flags.OutputDir, internal.GenerateCardID(r.Word))
	if err := p.save(ctx, dir, r); err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "  Saved to %s\n", dir)
	return dir, nil
}

// ProcessBatch forges every concept of the batch file. Processing stops at
// the first quota or credential error since later concepts would fail too.
func (p *Processor) ProcessBatch(ctx context.Context) (Summary, error) {
	var sum Summary
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return sum, err
	}
	sum.Total = len(entries)
	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return sum, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := p.connect(ctx); err != nil {
		return sum, err
	}

	for i, entry := range entries {
		if !entry.Valid {
			fmt.Fprintf(os.Stderr, "Skipping line %d: %q has fewer than %d words\n", entry.Line, entry.Concept, concept.MinWords)
			sum.Invalid++
			continue
		}
		if dir := p.findCardDirectory(entry.Concept); dir != "" {
			fmt.Fprintf(p.out, "  ✓ Skipping %q - already forged in %s\n", entry.Concept, filepath.Base(dir))
			sum.Skipped++
			continue
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Concept)
		if _, err := p.process(ctx, entry.Concept); err != nil {
			if errors.Is(err, errx.QuotaExceeded) || errors.Is(err, errx.AuthRequired) || errors.Is(err, errx.Cancelled) {
				p.printSummary(sum)
				return sum, err
			}
			fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", entry.Concept, err)
			sum.Errors++
			continue
		}
		sum.Processed++
	}

	p.printSummary(sum)
	return sum, nil
}

func (p *Processor) printSummary(sum Summary) {
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total concepts: %d\n", sum.Total)
	fmt.Fprintf(p.out, "Processed: %d\n", sum.Processed)
	fmt.Fprintf(p.out, "Skipped (already forged): %d\n", sum.Skipped)
	if sum.Invalid > 0 {
		fmt.Fprintf(p.out, "Invalid: %d\n", sum.Invalid)
	}
	if sum.Errors > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", sum.Errors)
	}
	fmt.Fprintf(p.out, "Remaining today: %d/%d\n", p.quota.Remaining(), p.quota.Limit())
	fmt.Fprintf(p.out, "================================\n")
}

// wordRecord is the JSON stored next to the sketch
type wordRecord struct {
	ID            string `json:"id"`
	Concept       string `json:"concept"`
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	Discovery     string `json:"discovery"`
	Sketch        string `json:"sketch"`
	CreatedAt     string `json:"created_at"`
}

func (p *Processor) save(ctx context.Context, dir string, r *concept.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create card directory: %w", err)
	}

	mimeType, data, err := concept.DecodeDataURI(r.Image)
	if err != nil {
		return errx.New(errx.ImageLoadError, "save", err)
	}
	sketch := "sketch" + extension(mimeType)
	if err := os.WriteFile(filepath.Join(dir, sketch), data, 0644); err != nil {
		return fmt.Errorf("failed to write sketch: %w", err)
	}

	record, err := json.MarshalIndent(wordRecord{
		ID:            r.ID,
		Concept:       r.Concept,
		Word:          r.Word,
		Pronunciation: r.Pronunciation,
		Definition:    r.Definition,
		Discovery:     r.Discovery,
		Sketch:        sketch,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode word: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, wordFile), record, 0644); err != nil {
		return fmt.Errorf("failed to write word: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, conceptFile), []byte(r.Concept+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write concept: %w", err)
	}

	if p.composer == nil {
		return nil
	}
	asset, err := p.composer.Compose(ctx, r)
	if err != nil {
		// The word itself is saved, so a card failure is only reported
		fmt.Fprintf(os.Stderr, "  Warning: failed to compose share card: %v\n", err)
		return nil
	}
	if err := os.WriteFile(filepath.Join(dir, cardFile), asset.File, 0644); err != nil {
		return fmt.Errorf("failed to write share card: %w", err)
	}
	text := asset.Text
	if asset.HostedURL != "" {
		text += "\n" + asset.HostedURL
		fmt.Fprintf(p.out, "  Card hosted at %s\n", asset.HostedURL)
	}
	return os.WriteFile(filepath.Join(dir, shareFile), []byte(text+"\n"), 0644)
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// findCardDirectory returns the card directory already forged for text
func (p *Processor) findCardDirectory(text string) string {
	entries, err := os.ReadDir(p.flags.OutputDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(p.flags.OutputDir, entry.Name())
		content, err := os.ReadFile(filepath.Join(dir, conceptFile))
		if err != nil {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(string(content)), strings.TrimSpace(text)) {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, wordFile)); err == nil {
			return dir
		}
	}
	return ""
}

// GenerateAnkiFile exports every word of the output directory as an Anki
// deck next to it
func (p *Processor) GenerateAnkiFile() (string, error) {
	cards, err := anki.LoadCards(p.flags.OutputDir)
	if err != nil {
		return "", err
	}
	deck := anki.NewDeck(deckName, time.Now())
	deck.Add(cards...)

	path := filepath.Join(filepath.Dir(p.flags.OutputDir), deckFile)
	if err := deck.Write(path); err != nil {
		return "", err
	}
	logx.Info().Int("words", deck.Len()).Str("path", path).Msg("anki deck written")
	return path, nil
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	app := gui.New(&gui.Config{
		Generation:   p.generationConfig(),
		Credentials:  p.creds,
		EnvFile:      p.flags.EnvFile,
		Store:        p.kv,
		Quota:        p.quota,
		OutputDir:    p.flags.OutputDir,
		ShareCommand: p.flags.ShareCommand,
		HostURL:      p.flags.HostURL,
		Log: logx.Options{
			Environment: logx.ParseEnvironment(p.flags.LogEnv),
			Level:       p.flags.LogLevel,
		},
	})
	app.Run()
	return nil
}
