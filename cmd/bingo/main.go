package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"Bingo2Gether/internal/coach"
	"Bingo2Gether/internal/config"
	"Bingo2Gether/internal/couple"
	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/game"
	"Bingo2Gether/internal/notifier"
	"Bingo2Gether/internal/recorder"
	"Bingo2Gether/internal/scheduler"
	"Bingo2Gether/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg, os.Args[2:])
		return
	}

	log.Println("[INFO] Bingo2Gether starting...")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init game store
	st, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, Path: cfg.Store.Path, DSN: cfg.Store.DSN})
	if err != nil {
		log.Fatalf("[FATAL] open %s store: %v", cfg.Store.Driver, err)
	}
	defer st.Close()
	log.Printf("[INFO] game store: %s", cfg.Store.Driver)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init reducer and couple manager
	gameSrc, err := newSource(cfg.Game.Seed)
	if err != nil {
		log.Fatalf("[FATAL] init random source: %v", err)
	}
	reducer := game.New(gameSrc, game.RealClock{},
		game.WithUndoDepth(cfg.Game.UndoDepth),
		game.WithCardSize(cfg.Game.CardSize),
	)
	threshold := time.Duration(cfg.Game.InactivityDays) * 24 * time.Hour
	mgr, err := couple.NewManager(ctx, cfg.Game.CoupleID, st, rec, reducer, couple.Options{InactivityThreshold: threshold})
	if err != nil {
		log.Fatalf("[FATAL] init couple manager: %v", err)
	}

	// Init coach. The coach draws from its own source; the reducer's is not shared.
	coachSrc, err := newSource("")
	if err != nil {
		log.Fatalf("[FATAL] init coach source: %v", err)
	}
	var provider coach.Provider = coach.NewStaticProvider(coachSrc)
	if cfg.Coach.GeminiAPIKey != "" {
		gemini := coach.NewGeminiProvider(cfg.Coach.GeminiAPIKey, cfg.Coach.Model, cfg.Proxy,
			time.Duration(cfg.Coach.TimeoutSeconds)*time.Second, coachSrc)
		provider = coach.WithFallback(gemini, provider)
	}
	log.Printf("[INFO] coach provider: %s", provider.Name())
	ch := coach.New(provider, cfg.Coach.Recent)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	for user, chat := range cfg.Telegram.ChatIDs {
		tn.UserChat[user] = chat
	}
	if tn.ChatID == "" {
		tn.ChatID = cfg.Telegram.ChatIDs["p1"]
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, mgr, ch, tn, threshold)
	if err := sched.RegisterAll(cfg.Schedule.RitualCron, cfg.Schedule.InactivityCron, cfg.Schedule.MonthlyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, running inactivity check now")
		go sched.RunChecksNow()
	}

	log.Println("[INFO] Bingo2Gether is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] Bingo2Gether stopped")
}

func newSource(seed string) (draw.Source, error) {
	if seed != "" {
		return draw.NewSourceFromString(seed)
	}
	return draw.NewRandomSource()
}

// runMigrate applies the Postgres schema: "bingo migrate up|down".
func runMigrate(cfg *config.Config, args []string) {
	if cfg.Store.DSN == "" {
		log.Fatal("[FATAL] migrate needs store.dsn or DATABASE_URL")
	}
	m, err := store.NewMigrator(cfg.Store.DSN, cfg.Store.MigrationsDir)
	if err != nil {
		log.Fatalf("[FATAL] init migrator: %v", err)
	}
	dir := "up"
	if len(args) > 0 {
		dir = args[0]
	}
	ctx := context.Background()
	switch dir {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	default:
		log.Fatalf("[FATAL] unknown migrate direction %q (want up or down)", dir)
	}
	if errors.Is(err, store.ErrNoChange) {
		log.Println("[INFO] schema already up to date")
		return
	}
	if err != nil {
		log.Fatalf("[FATAL] migrate %s: %v", dir, err)
	}
	log.Printf("[INFO] migrate %s done", dir)
}
