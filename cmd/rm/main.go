// Command rm is a CLI client for the Roommaster hotel booking API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/roommaster/internal/apierr"
	"github.com/and161185/roommaster/internal/config"
	"github.com/and161185/roommaster/internal/logging"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const usageText = `rm CLI
Usage:
  rm [-config file] [-env file] [-base-url URL] [-store path] [-log-level lvl] <cmd> [args]

Commands:
  version
  register         -name <full name> -phone <phone> -email <email> -password <pw>
  login            -phone <phone> -password <pw>
  logout
  whoami           [-remote]
  profile          [-name ..] [-email ..] [-phone ..] [-id-number ..] [-address ..]
  passwd           -current <pw> -new <pw>
  forgot-password  -email <email>
  reset-password   -token <token> -password <pw>
  rooms            -in YYYY-MM-DD -out YYYY-MM-DD [-q text] [-types id,..] [-sort price_asc|price_desc]
                   [-min-price n] [-max-price n] [-min-cap n] [-max-cap n] [-floor n] [-page n] [-limit n]
  room             -id <room id>
  cart add         -room <room id> -in YYYY-MM-DD -out YYYY-MM-DD [-guests n]
  cart ls
  cart update      -id <item id> [-in ..] [-out ..] [-guests n]
  cart rm          -id <item id>
  cart clear
  cart summary
  checkout
  bookings         [-tab all|upcoming|completed|cancelled] [-page n] [-limit n]
  booking          -id <booking id>
  cancel           -id <booking id>
  qr               [-o file]
`

// usageError marks bad invocations (exit code 2).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	cfgFile := fs.String("config", filepath.Join(config.Dir(), "config.yaml"), "YAML config file")
	envFile := fs.String("env", ".env", "dotenv file")
	baseURL := fs.String("base-url", "", "API base URL")
	storePath := fs.String("store", "", "local store path")
	logLevel := fs.String("log-level", "", "debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	if cmd == "version" {
		fmt.Fprintf(stdout, "rm %s (%s)\n", version, buildDate)
		return 0
	}

	cfg, err := config.Load(*cfgFile, *envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	h, ok := a.commands()[cmd]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	if err := h(ctx, rest, stdout); err != nil {
		return fail(stderr, log, err)
	}
	return 0
}

// fail prints err the way the user should see it and returns the exit code.
func fail(stderr io.Writer, log *zap.Logger, err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, ue.msg)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}

	log.Debug("command failed", zap.Error(err))
	res := apierr.Classify(err, "")
	fmt.Fprintln(stderr, "error:", res.Message)
	if res.IsAuthError {
		fmt.Fprintln(stderr, "hint: run `rm login` to sign in")
	}
	return 1
}
