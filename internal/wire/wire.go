// Package wire provides dependency injection for the mediminder application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	cliadapter "github.com/example/mediminder/internal/adapters/cli"
	"github.com/example/mediminder/internal/adapters/sqlite"
	"github.com/example/mediminder/internal/adapters/telegram"
	"github.com/example/mediminder/internal/app"
	"github.com/example/mediminder/internal/config"
	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/db"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/logging"
	"github.com/example/mediminder/internal/ports/primary"
)

var (
	configPath = config.DefaultPath()

	cfg       *config.Config
	engineCfg app.EngineConfig
	database  *sql.DB
	logger    *slog.Logger
	logCloser io.Closer
	locks     *lock.KeyedMutex

	scheduleRepo  *sqlite.ScheduleRepository
	instanceRepo  *sqlite.InstanceRepository
	recipientRepo *sqlite.RecipientRepository
	callRepo      *sqlite.EscalationCallRepository

	scheduleService  primary.ScheduleService
	recipientService primary.RecipientService
	reminderService  primary.ReminderService
	responseService  primary.ResponseService
	callService      primary.EscalationCallService

	once sync.Once
)

// SetConfigPath overrides the config file location. Must be called before
// any service is requested.
func SetConfigPath(path string) {
	if path != "" {
		configPath = path
	}
}

// ConfigPath returns the config file location in use.
func ConfigPath() string {
	return configPath
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// DB returns the shared database handle.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// ScheduleService returns the singleton ScheduleService instance.
func ScheduleService() primary.ScheduleService {
	once.Do(initServices)
	return scheduleService
}

// RecipientService returns the singleton RecipientService instance.
func RecipientService() primary.RecipientService {
	once.Do(initServices)
	return recipientService
}

// ReminderService returns the singleton ReminderService instance.
func ReminderService() primary.ReminderService {
	once.Do(initServices)
	return reminderService
}

// ResponseService returns a ResponseService without snooze timers; snoozed
// rows are picked up by the next detector tick of the running daemon.
func ResponseService() primary.ResponseService {
	once.Do(initServices)
	return responseService
}

// EscalationCallService returns the singleton EscalationCallService instance.
func EscalationCallService() primary.EscalationCallService {
	once.Do(initServices)
	return callService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(false); err != nil {
		log.Fatalf("%v", err)
	}
	engineCfg, err = cfg.ToEngineConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, logCloser, err = logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	database, err = db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	scheduleRepo = sqlite.NewScheduleRepository(database)
	instanceRepo = sqlite.NewInstanceRepository(database)
	recipientRepo = sqlite.NewRecipientRepository(database)
	callRepo = sqlite.NewEscalationCallRepository(database)
	locks = lock.NewKeyedMutex()

	// Create services (primary ports implementation)
	scheduleService = app.NewScheduleService(scheduleRepo, recipientRepo)
	recipientService = app.NewRecipientService(recipientRepo)
	reminderService = app.NewReminderService(instanceRepo)
	responseService = app.NewResponseService(instanceRepo, locks, nil, engineCfg, app.Clock(time.Now), logger)
	callService = app.NewEscalationCallService(callRepo)
}

// Close releases the database and log file.
func Close() {
	if database != nil {
		database.Close()
	}
	if logCloser != nil {
		logCloser.Close()
	}
}

// Runtime is the Telegram-connected engine used by serve and tick.
type Runtime struct {
	Engine *app.Engine
	Bot    *telegram.Bot
	Timers *app.SnoozeTimers
}

// NewRuntime connects to Telegram and assembles the reminder engine.
func NewRuntime() (*Runtime, error) {
	once.Do(initServices)
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}

	api, err := telegram.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	transport := telegram.NewTransport(api, cfg.Telegram.SendRate, cfg.Telegram.SendBurst)
	operator := telegram.NewAdminNotifier(transport, cfg.Telegram.AdminChatID, logger)

	clock := app.Clock(time.Now)
	worker := app.NewDeliveryWorker(instanceRepo, scheduleRepo, transport, operator, locks,
		reminder.DefaultRetryPolicy(engineCfg.MaxSendRetries), engineCfg, app.SleepContext, clock, logger)
	detector := app.NewDetector(scheduleRepo, instanceRepo, worker, locks, engineCfg, clock, uuid.NewString, logger)
	escalator := app.NewCallEscalator(callRepo, transport)
	sweeper := app.NewEscalationSweeper(instanceRepo, escalator, transport, operator, locks, engineCfg, clock, logger)

	scheduler := app.NewScheduler(logger)
	timers := app.NewSnoozeTimers(scheduler, worker.Deliver, logger)
	responses := app.NewResponseService(instanceRepo, locks, timers, engineCfg, clock, logger)

	bot := telegram.NewBot(api, transport, responses, scheduleService, recipientService, engineCfg.Location, logger)

	return &Runtime{
		Engine: app.NewEngine(detector, sweeper, scheduler, engineCfg, logger),
		Bot:    bot,
		Timers: timers,
	}, nil
}

// ServeLock returns the single-daemon lock next to the database.
func ServeLock() *lock.FileLock {
	once.Do(initServices)
	return lock.NewFileLock(cfg.Database.Path + ".lock")
}

// SeedFixtures loads the development fixtures.
func SeedFixtures() error {
	once.Do(initServices)
	if err := db.SeedFixtures(database); err != nil {
		return fmt.Errorf("failed to seed fixtures: %w", err)
	}
	return nil
}

// ReminderAdapter returns a new ReminderAdapter writing to stdout.
func ReminderAdapter() *cliadapter.ReminderAdapter {
	return ReminderAdapterWithOutput(os.Stdout)
}

// ReminderAdapterWithOutput returns a new ReminderAdapter writing to the given output.
func ReminderAdapterWithOutput(out io.Writer) *cliadapter.ReminderAdapter {
	once.Do(initServices)
	return cliadapter.NewReminderAdapter(reminderService, responseService, engineCfg.Location, out)
}

// ScheduleAdapter returns a new ScheduleAdapter writing to stdout.
func ScheduleAdapter() *cliadapter.ScheduleAdapter {
	once.Do(initServices)
	return cliadapter.NewScheduleAdapter(scheduleService, recipientService, os.Stdout)
}

// CallAdapter returns a new CallAdapter writing to stdout.
func CallAdapter() *cliadapter.CallAdapter {
	once.Do(initServices)
	return cliadapter.NewCallAdapter(callService, os.Stdout)
}

// EngineAdapter returns an adapter running the periodic handlers once.
func EngineAdapter(engine primary.EngineService) *cliadapter.EngineAdapter {
	return cliadapter.NewEngineAdapter(engine, os.Stdout)
}
