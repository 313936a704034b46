package main

import (
	"fmt"

	"specsync/internal/config"
	"specsync/internal/detector"
	"specsync/internal/fetcher"
	"specsync/internal/generator"
	"specsync/internal/logger"
	"specsync/internal/notifier"
	"specsync/internal/orchestrator"
	"specsync/internal/secrets"
	"specsync/internal/store"
)

// appContext wires the full pipeline from a parsed configuration. Commands
// build one per invocation and close it when they are done.
type appContext struct {
	cfg      *config.Config
	log      *logger.Logger
	store    store.ChecksumStore
	notifier notifier.Notifier
	orch     *orchestrator.Orchestrator
}

func buildAppContext(flags *rootFlags) (*appContext, error) {
	cfg, err := config.ParseConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	level := "info"
	if flags.verbose || cfg.Settings.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return nil, err
	}

	resolver := secrets.NewEnvResolver(cfg.Secrets.EnvPrefix)

	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	pub, err := buildNotifier(cfg, resolver, log)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Config:   cfg,
		Store:    st,
		Fetcher:  fetcher.New(resolver, log, cfg.Settings),
		Detector: detector.New(st),
		Engine:   generator.NewEngine(generator.DefaultRegistry(), cfg.Settings.OutputDir, log),
		Notifier: pub,
		Logger:   log,
	})
	if err != nil {
		pub.Close() //nolint:errcheck
		st.Close()  //nolint:errcheck
		return nil, err
	}

	return &appContext{
		cfg:      cfg,
		log:      log,
		store:    st,
		notifier: pub,
		orch:     orch,
	}, nil
}

func (a *appContext) Close() {
	if err := a.notifier.Close(); err != nil {
		a.log.Error(err, "close notifier")
	}
	if err := a.store.Close(); err != nil {
		a.log.Error(err, "close checksum store")
	}
}

func openStore(cfg config.Store) (store.ChecksumStore, error) {
	switch cfg.Driver {
	case "bolt":
		return store.NewBoltStore(cfg.Path)
	case "", "file":
		return store.NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

func buildNotifier(cfg *config.Config, resolver secrets.Resolver, log *logger.Logger) (notifier.Notifier, error) {
	switch cfg.Notifier.Driver {
	case "kafka":
		return notifier.NewKafkaNotifier(cfg.Notifier, resolver)
	case "", "log":
		return notifier.NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver: %q", cfg.Notifier.Driver)
	}
}
