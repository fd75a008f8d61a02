package gui

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/wurdle/internal"
	"codeberg.org/snonux/wurdle/internal/audio"
	"codeberg.org/snonux/wurdle/internal/cli"
	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/dictation"
	"codeberg.org/snonux/wurdle/internal/generation"
	"codeberg.org/snonux/wurdle/internal/logx"
	"codeberg.org/snonux/wurdle/internal/quota"
	"codeberg.org/snonux/wurdle/internal/scramble"
	"codeberg.org/snonux/wurdle/internal/screen"
	"codeberg.org/snonux/wurdle/internal/share"
	"codeberg.org/snonux/wurdle/internal/sharecard"
	"codeberg.org/snonux/wurdle/internal/store"
)

// Timings of the input and result screens
const (
	revealTicks   = 6
	revealGap     = 35 * time.Millisecond
	toastDuration = 3 * time.Second
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// Screens
	content     *fyne.Container
	splashView  fyne.CanvasObject
	inputView   fyne.CanvasObject
	resultView  fyne.CanvasObject
	upgradeView fyne.CanvasObject
	credsView   fyne.CanvasObject

	// Input screen
	conceptEntry *ConceptEntry
	exampleBtn   *widget.Button
	errorLabel   *widget.Label
	clearBtn     *ttwidget.Button
	goBtn        *ttwidget.Button
	randomBtn    *ttwidget.Button
	micBtn       *ttwidget.Button
	levelMeter   *LevelMeter

	// Result screen
	sketch         *ImageDisplay
	wordLines      *fyne.Container
	speakBtn       *SpeakButton
	definition     *widget.Label
	discovery      *widget.Label
	shareBtn       *ttwidget.Button
	resetBtn       *ttwidget.Button
	statusLabel    *widget.Label
	upgradeTitle   *fyne.Container
	diagnosticsWin fyne.Window

	// Services
	screens    *screen.Controller
	orch       *generation.Orchestrator
	presenter  *scramble.Presenter
	dictation  *dictation.Session
	speaker    *audio.Speaker
	preparer   *sharecard.Preparer
	dispatcher *share.Dispatcher
	sharer     *share.CommandSharer
	logViewer  *LogViewer
	log        zerolog.Logger

	// State, owned by the main goroutine
	loading      bool
	genSeq       int
	concept      string
	scrambling   *scramble.Handle
	exampleIndex int
	rnd          *rand.Rand
	speechDir    string

	// generatePending defers generation until dictation has ended
	generatePending bool

	// Configuration
	config *Config

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds GUI application configuration
type Config struct {
	Generation  generation.Config
	Credentials cli.Credentials
	// EnvFile is re-read when the user retries after a credential error
	EnvFile      string
	Store        store.KV
	Quota        *quota.Tracker
	OutputDir    string
	ShareCommand string
	HostURL      string
	Log          logx.Options
}

// DefaultConfig returns default GUI configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	kv := store.NewMemory()
	return &Config{
		EnvFile:   ".env",
		Store:     kv,
		Quota:     quota.NewTracker(kv, quota.DefaultDailyLimit),
		OutputDir: filepath.Join(homeDir, ".local", "state", "wurdle", "cards"),
		HostURL:   sharecard.DefaultHostURL,
		Log:       logx.DefaultOptions,
	}
}

// New creates a new GUI application
func New(config *Config) *Application {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	} else {
		// Fill in missing fields with defaults
		if config.Store == nil {
			config.Store = defaults.Store
		}
		if config.Quota == nil {
			config.Quota = quota.NewTracker(config.Store, quota.DefaultDailyLimit)
		}
		if config.OutputDir == "" {
			config.OutputDir = defaults.OutputDir
		}
		if config.HostURL == "" {
			config.HostURL = defaults.HostURL
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	myApp := app.NewWithID("org.codeberg.snonux.wurdle")
	myApp.Settings().SetTheme(newWurdleTheme())
	myApp.SetIcon(GetAppIcon())

	a := &Application{
		app:       myApp,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		screens:   screen.NewController(),
		presenter: scramble.NewPresenter(nil, nil),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logViewer: NewLogViewer(),
	}

	// Tee logs into the diagnostics window from now on
	logOpts := config.Log
	logOpts.Extra = a.logViewer.Writer()
	logx.Init(logOpts)
	a.log = logx.With("gui")

	a.setupUI()
	a.screens.OnChange(func(t screen.Transition) {
		fyne.Do(func() { a.onScreenChange(t) })
	})

	if config.Credentials.HasAI() {
		if err := a.connect(); err != nil {
			a.log.Warn().Err(err).Msg("failed to connect generation provider")
		}
	}

	return a
}

// connect builds the generation services from the current credentials
func (a *Application) connect() error {
	creds := a.config.Credentials
	cfg := a.config.Generation
	cfg.GeminiKey = creds.GeminiAPIKey
	cfg.OpenAIKey = creds.OpenAIAPIKey

	provider, err := generation.NewProvider(a.ctx, cfg)
	if err != nil {
		return err
	}
	a.orch = generation.NewGuardedOrchestrator(provider, a.config.Quota)
	a.log.Info().Str("provider", provider.Name()).Int("remaining", a.orch.Remaining()).Msg("generation provider ready")

	a.setupDictation(provider, creds)
	a.setupSpeaker(creds)
	a.setupSharing(creds)
	a.refreshInputButtons()
	return nil
}

// setupSpeaker speaks through OpenAI TTS with espeak-ng as fallback
func (a *Application) setupSpeaker(creds cli.Credentials) {
	cacheDir := filepath.Join(filepath.Dir(a.config.OutputDir), "speech_cache")
	espeak, _ := audio.NewESpeakProvider(nil)

	var provider audio.Provider = espeak
	ext := ".wav"
	if creds.OpenAIAPIKey != "" {
		cfg := audio.DefaultProviderConfig()
		cfg.OpenAIKey = creds.OpenAIAPIKey
		cfg.CacheDir = cacheDir
		if openaiTTS, err := audio.NewProvider(cfg); err == nil {
			provider = audio.NewChain(openaiTTS, espeak)
			ext = ".mp3"
		}
	}
	if err := provider.IsAvailable(); err != nil {
		a.log.Info().Err(err).Msg("speech disabled")
		return
	}

	dir, err := os.MkdirTemp("", "wurdle-speech-")
	if err != nil {
		a.log.Warn().Err(err).Msg("speech disabled")
		return
	}
	a.speechDir = dir
	a.speaker = audio.NewSpeaker(provider, audio.NewCommandPlayer(), dir, ext)
	a.speakBtn.speaker = a.speaker
}

// setupSharing prepares cards in the background and shares them
func (a *Application) setupSharing(creds cli.Credentials) {
	var hoster sharecard.Hoster
	if creds.ImgBBAPIKey != "" {
		hoster = sharecard.NewImgBBHoster(a.config.HostURL, creds.ImgBBAPIKey)
	}
	composer, err := sharecard.NewComposer(hoster)
	if err != nil {
		a.log.Error().Err(err).Msg("share cards disabled")
		return
	}
	a.preparer = sharecard.NewPreparer(composer)
	a.preparer.OnReady = a.onCardReady
	a.dispatcher = a.newDispatcher()
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("%s v%s", appTitle, internal.Version))
	a.window.SetIcon(GetAppIcon())
	a.window.Resize(fyne.NewSize(480, 820))

	a.splashView = a.buildSplash()
	a.inputView = a.buildInput()
	a.resultView = a.buildResult()
	a.upgradeView = a.buildUpgrade()
	a.credsView = a.buildCredentials()

	a.content = container.NewStack(a.splashView)
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(a.content, a.window.Canvas()))
	a.setupTooltips()
	a.setupKeyboardShortcuts()

	a.window.SetOnClosed(func() {
		a.cancel()
		if a.orch != nil {
			a.orch.Cancel()
		}
		if a.dictation != nil {
			a.dictation.Stop()
		}
		if a.speaker != nil {
			a.speaker.Stop()
		}
		if a.sharer != nil {
			a.sharer.Cleanup()
		}
		a.wg.Wait()
		if a.speechDir != "" {
			os.RemoveAll(a.speechDir)
		}
	})
}

// Run starts the GUI application
func (a *Application) Run() {
	a.wg.Add(1)
	go a.rotateExamples()
	a.window.ShowAndRun()
}

// show replaces the visible screen
func (a *Application) show(view fyne.CanvasObject) {
	a.content.Objects = []fyne.CanvasObject{view}
	a.content.Refresh()
}

// onScreenChange renders a controller transition
func (a *Application) onScreenChange(t screen.Transition) {
	a.log.Debug().Stringer("from", t.From).Stringer("to", t.To).Stringer("direction", t.Direction).Msg("screen change")

	switch t.To {
	case screen.Input:
		if !a.config.Credentials.HasAI() {
			a.show(a.credsView)
			return
		}
		if t.From == screen.Result {
			a.conceptEntry.SetText("")
		}
		if a.preparer != nil {
			a.preparer.Set(nil)
		}
		a.show(a.inputView)
		a.window.Canvas().Focus(a.conceptEntry)
		a.maybeShowInstallHint()
	case screen.Result:
		a.showResult(a.screens.Current())
		a.show(a.resultView)
	case screen.Upgrade:
		a.show(a.upgradeView)
	default:
		a.show(a.splashView)
	}
}

// showResult fills the result screen
func (a *Application) showResult(r *concept.Result) {
	if r == nil {
		return
	}
	a.sketch.SetDataURI(r.Image)
	a.setHeadline(r.Word)
	a.speakBtn.SetWord(r.Word, r.Pronunciation)
	a.definition.SetText(r.Definition)
	a.discovery.SetText(r.Discovery)
	a.statusLabel.SetText(fmt.Sprintf("%d/%d left today", a.config.Quota.Remaining(), a.config.Quota.Limit()))

	a.shareBtn.Disable()
	if a.preparer != nil {
		a.preparer.Set(r)
	}
	a.reveal()
}

// onProceed leaves the splash screen
func (a *Application) onProceed() {
	if err := a.screens.Proceed(); err != nil {
		a.log.Debug().Err(err).Msg("proceed ignored")
	}
}

// onReset archives the result and returns to input
func (a *Application) onReset() {
	if a.speaker != nil {
		a.speaker.Stop()
	}
	if err := a.screens.Reset(a.config.Quota.Remaining()); err != nil {
		a.log.Debug().Err(err).Msg("reset ignored")
	}
}

// onUpgrade leaves the upgrade screen
func (a *Application) onUpgrade() {
	if err := a.screens.UpgradeCTA(); err != nil {
		a.log.Debug().Err(err).Msg("upgrade ignored")
	}
}

// onRetryCredentials re-reads the credentials after the user set a key
func (a *Application) onRetryCredentials() {
	creds, err := cli.LoadCredentials(a.config.EnvFile)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.config.Credentials = creds
	if !creds.HasAI() {
		dialog.ShowInformation(credentialsTitle, "Still no API key found.", a.window)
		return
	}
	if err := a.connect(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.onScreenChange(screen.Transition{From: screen.Splash, To: screen.Input})
}

// requireCredentials shows the credential screen, e.g. after the provider
// rejected the key
func (a *Application) requireCredentials() {
	a.config.Credentials.GeminiAPIKey = ""
	a.config.Credentials.OpenAIAPIKey = ""
	a.orch = nil
	a.show(a.credsView)
}

// maybeShowInstallHint shows the desktop hint once per installation
func (a *Application) maybeShowInstallHint() {
	if store.MarkOnce(a.ctx, a.config.Store, store.KeyInstallPromptShown) {
		dialog.ShowInformation(installHintTitle, installHintText, a.window)
	}
}

// rotateExamples advances the example concept while the input is empty
func (a *Application) rotateExamples() {
	defer a.wg.Done()
	ticker := time.NewTicker(concept.ExampleRotation)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			fyne.Do(func() {
				a.exampleIndex++
				a.exampleBtn.SetText("eg. " + concept.ExampleAt(a.exampleIndex))
			})
		}
	}
}

// reveal fades the headline in with a short burst of ticks
func (a *Application) reveal() {
	step := 0
	a.setHeadlineAlpha(0)
	scramble.Reveal(nil, revealTicks, revealGap, func() {
		step++
		alpha := uint8(255 * step / revealTicks)
		fyne.Do(func() { a.setHeadlineAlpha(alpha) })
	})
}

// toast shows a transient status message on the result screen
func (a *Application) toast(message string) {
	previous := a.statusLabel.Text
	a.statusLabel.SetText(message)
	time.AfterFunc(toastDuration, func() {
		fyne.Do(func() {
			if a.statusLabel.Text == message {
				a.statusLabel.SetText(previous)
			}
		})
	})
}

func (a *Application) showInlineError(message string) {
	a.errorLabel.SetText(message)
	a.errorLabel.Show()
}

func (a *Application) clearInlineError() {
	a.errorLabel.SetText("")
	a.errorLabel.Hide()
}

// onShowDiagnostics opens the log window
func (a *Application) onShowDiagnostics() {
	if a.diagnosticsWin != nil {
		a.diagnosticsWin.RequestFocus()
		return
	}
	w := a.app.NewWindow(appTitle + " diagnostics")
	w.SetContent(a.logViewer)
	w.Resize(fyne.NewSize(640, 420))
	w.SetOnClosed(func() {
		a.logViewer.Detach()
		a.diagnosticsWin = nil
	})
	a.diagnosticsWin = w
	a.logViewer.Attach()
	w.Show()
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.clearBtn.SetToolTip("Clear (Esc)")
	a.goBtn.SetToolTip("Forge word (Ctrl+Enter)")
	a.randomBtn.SetToolTip("Random idea")
	a.micBtn.SetToolTip("Dictate")
	a.speakBtn.SetToolTip("Speak word (p)")
	a.shareBtn.SetToolTip("Share card (s)")
	a.resetBtn.SetToolTip("New word (n)")
}

// setupKeyboardShortcuts handles keys when no entry is focused
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.window.Canvas().Focused() == a.conceptEntry {
			return
		}
		cur, _ := a.screens.State()
		switch r {
		case 'p', 'P':
			if cur == screen.Result {
				a.speakBtn.Play()
			}
		case 's', 'S':
			if cur == screen.Result && !a.shareBtn.Disabled() {
				a.onShare()
			}
		case 'n', 'N':
			if cur == screen.Result {
				a.onReset()
			}
		case 'l', 'L':
			a.onShowDiagnostics()
		case 'q', 'Q':
			a.window.Close()
		}
	})

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			if a.loading {
				a.onCancelGenerate()
				return
			}
			a.window.Canvas().Unfocus()
		case fyne.KeyReturn, fyne.KeyEnter:
			cur, _ := a.screens.State()
			switch cur {
			case screen.Splash:
				a.onProceed()
			case screen.Upgrade:
				a.onUpgrade()
			}
		}
	})
}
