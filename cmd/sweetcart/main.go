package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/app"
	"github.com/vladislavdragonenkov/sweetcart/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2

	pushTimeout = 5 * time.Second
)

// errInvalid помечает ошибки ввода и невалидную корзину: они завершаются с кодом 2.
var errInvalid = errors.New("invalid input")

// setupLogger настраивает формат и уровень логирования клиента.
func setupLogger(stderr io.Writer, level string) *log.Entry {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger.WithField("component", "sweetcart")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitInvalid
	}

	name, rest := args[0], args[1:]
	switch name {
	case "version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return exitInvalid
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFailure
	}
	logger := setupLogger(stderr, cfg.LogLevel)

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize client")
		return exitFailure
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close dependencies")
		}
	}()

	err = cmd.run(ctx, deps, rest, stdout)

	pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	if pushErr := deps.PushMetrics(pushCtx); pushErr != nil {
		logger.WithError(pushErr).Warn("failed to push metrics")
	}
	cancel()

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInvalid):
		_, _ = fmt.Fprintln(stderr, err)
		return exitInvalid
	default:
		logger.WithError(err).WithField("command", name).Error("command failed")
		return exitFailure
	}
}
