package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sinhala/internal/bot"
	"github.com/example/sinhala/internal/config"
	"github.com/example/sinhala/internal/content"
	"github.com/example/sinhala/internal/database"
	"github.com/example/sinhala/internal/excel"
	"github.com/example/sinhala/internal/scheduler"
	"github.com/example/sinhala/internal/server"
	"github.com/example/sinhala/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

const usage = `Usage: sinhala <command> [flags]

Commands:
  serve      run the HTTP API, the Telegram bot and reminders
  import     import vocabulary from an xlsx/csv file into a lesson
  validate   parse every lesson and report broken content
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "import":
		err = runImport(args)
	case "validate":
		err = runValidate(args)
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "HTTP port (overrides SERVER_PORT)")
	noBot := fs.Bool("no-bot", false, "do not start the Telegram bot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.ServerPort = *port
	}

	// Подключаемся к базе данных
	if err := database.Connect(cfg.DBType, cfg.DataSource()); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	store, err := content.NewStore(cfg.ContentDir)
	if err != nil {
		return err
	}

	glyphFont, err := tracing.LoadFont(cfg.GlyphFontPath)
	if err != nil {
		return err
	}

	progressRepo := database.NewCharacterProgressRepository()
	srv := server.New(server.Deps{
		Content:     store,
		Validator:   tracing.NewValidator(glyphFont, tracing.DefaultConfig()),
		Progress:    progressRepo,
		Preferences: database.NewPreferenceRepository(),
		Results:     database.NewExerciseResultRepository(),
		StaticDir:   cfg.StaticDir,
		Logger:      server.NewLogger(os.Stdout),
	})

	// Создаем контекст, который отменяется по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" && !*noBot {
		subscribers := database.NewSubscriberRepository()
		botCfg := bot.DefaultConfig()
		botCfg.DefaultReminderHour = cfg.DefaultReminderHour

		b, err := bot.New(cfg.TelegramToken, bot.Deps{
			Content:     store,
			Progress:    progressRepo,
			Subscribers: subscribers,
			Config:      botCfg,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := b.Start(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()

		if cfg.EnableScheduler {
			sched := scheduler.New(b, subscribers, progressRepo, func() int {
				return len(store.CharacterIDs())
			})
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}
	} else {
		log.Println("Telegram bot disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on :%s", cfg.ServerPort)
		errCh <- srv.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	// Даем время на graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped successfully")
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "xlsx or csv file with vocabulary")
	lesson := fs.String("lesson", "", "lesson id whose vocab list is replaced")
	sheet := fs.String("sheet", "", "sheet name (default: first sheet)")
	startRow := fs.Int("start-row", 2, "first data row (1-based)")
	template := fs.String("template", "", "write an empty xlsx template to this path and exit")
	contentDir := fs.String("content", "", "content directory (overrides CONTENT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *template != "" {
		if err := excel.WriteTemplate(*template); err != nil {
			return err
		}
		log.Printf("Template written to %s", *template)
		return nil
	}
	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = *file
	importCfg.SheetName = *sheet
	importCfg.StartRow = *startRow

	result, err := excel.ImportVocab(importCfg)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		log.Printf("Warning: %s", msg)
	}
	log.Printf("Processed %d rows: %d imported, %d skipped, %d duplicates",
		result.TotalProcessed, result.Imported, result.Skipped, result.Duplicates)

	if *lesson == "" {
		for _, v := range result.Vocab {
			fmt.Printf("%s = %s\n", v.Sinhala, v.English)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *contentDir != "" {
		cfg.ContentDir = *contentDir
	}
	store, err := content.NewStore(cfg.ContentDir)
	if err != nil {
		return err
	}
	path, err := store.ResolveLessonPath(*lesson)
	if err != nil {
		return err
	}
	if err := excel.WriteLessonVocab(path, result.Vocab); err != nil {
		return err
	}
	log.Printf("Wrote %d words to %s", len(result.Vocab), path)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	contentDir := fs.String("content", "", "content directory (overrides CONTENT_DIR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *contentDir != "" {
		cfg.ContentDir = *contentDir
	}

	store, err := content.NewStore(cfg.ContentDir)
	if err != nil {
		return err
	}
	issues := store.ValidateAll()
	for _, issue := range issues {
		fmt.Printf("%s: %v\n", issue.LessonID, issue.Err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d problems found", len(issues))
	}
	fmt.Println("All content is valid")
	return nil
}
