package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/config"
	"github.com/dmitrijs2005/moodkeeper/internal/client/models"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type authAPI interface {
	Register(ctx context.Context, email, password, username string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*api.Profile, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type moodAPI interface {
	CreateMood(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error)
	UpdateMood(ctx context.Context, m *models.MoodEntry) (*models.MoodEntry, error)
	DeleteMood(ctx context.Context, m *models.MoodEntry) error
	AttachPhoto(ctx context.Context, id int64, path string) (*models.MoodEntry, error)
	SyncUnsyncedMoods(ctx context.Context) (int, error)
	SyncMoodsFromBackend(ctx context.Context) error
	ListMoods(ctx context.Context) ([]*models.MoodEntry, error)
	ListMoodsBetween(ctx context.Context, from, to string) ([]*models.MoodEntry, error)
	GetMood(ctx context.Context, id int64) (*models.MoodEntry, error)
	Subscribe(ctx context.Context) (<-chan []*models.MoodEntry, error)
	PendingCount(ctx context.Context) (int, error)
}

type statsAPI interface {
	MoodStats(ctx context.Context, period string) (*api.MoodStats, error)
	Summary(ctx context.Context) (*api.Summary, error)
	Activities(ctx context.Context) ([]api.Activity, error)
}

type sessionView interface {
	Current() (models.Session, bool)
	IsLoggedIn() bool
}

// Prober reports whether the server is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

type App struct {
	config  *config.Config
	auth    authAPI
	moods   moodAPI
	stats   statsAPI
	session sessionView
	prober  Prober
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time

	mu      sync.Mutex
	mode    Mode
	pending int
}

// Deps are the collaborators of an App.
type Deps struct {
	Auth    authAPI
	Moods   moodAPI
	Stats   statsAPI
	Session sessionView
	Prober  Prober
	Logger  logging.Logger
	In      io.Reader
	Out     io.Writer
}

func NewApp(c *config.Config, d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		config:  c,
		auth:    d.Auth,
		moods:   d.Moods,
		stats:   d.Stats,
		session: d.Session,
		prober:  d.Prober,
		logger:  logger.With("module", "cli"),
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
		now:     time.Now,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode records the connectivity mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	return true
}

func (a *App) getPending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

func (a *App) setPending(n int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == n {
		return false
	}
	a.pending = n
	return true
}

// Run starts the background watchers and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to moodkeeper (type 'help' for commands)")
	if s, ok := a.session.Current(); ok {
		printlnFn("Logged in as " + s.Email)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()
	go func() {
		defer wg.Done()
		a.watchPending(ctx)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}
