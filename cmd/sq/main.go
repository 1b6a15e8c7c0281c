package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"SpendQueue/internal/config"
	"SpendQueue/internal/fund"
	"SpendQueue/internal/notifier"
	"SpendQueue/internal/opener"
	"SpendQueue/internal/prompt"
	"SpendQueue/internal/recorder"
)

// app carries everything a command needs. It is filled in by setup before
// any command runs.
type app struct {
	configPath string
	statePath  string

	cfg         *config.Config
	fund        *fund.Manager
	rec         recorder.Recorder
	opener      opener.Opener
	prompt      *prompt.Prompter
	style       notifier.Styler
	interactive bool
}

func main() {
	a := &app{}
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfgPath := a.configPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.statePath != "" {
		cfg.StateFile = a.statePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	a.cfg = cfg
	zerolog.SetGlobalLevel(cfg.Level())

	a.rec = recorder.NewNoopRecorder()
	if cfg.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0o755); err != nil {
			log.Warn().Err(err).Msg("create history dir, using noop recorder")
		} else if sr, err := recorder.NewSQLiteRecorder(cfg.HistoryDB); err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.rec = sr
		}
	}

	a.fund = fund.NewManager(cfg.StateFile, fund.WithRecorder(a.rec))
	a.opener = opener.NewCommandOpener(cfg.OpenCommand)
	a.prompt = prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
	a.style = notifier.NewStyler(os.Stdout)
	a.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	return nil
}

func (a *app) close() {
	if a.rec == nil {
		return
	}
	if err := a.rec.Close(); err != nil {
		log.Error().Err(err).Msg("close recorder")
	}
	a.rec = nil
}
