// Package main provides the bucketbox entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/config"
	"github.com/olivier-w/bucketbox/internal/logger"
	"github.com/olivier-w/bucketbox/internal/media"
	"github.com/olivier-w/bucketbox/internal/player"
	"github.com/olivier-w/bucketbox/internal/sched"
	"github.com/olivier-w/bucketbox/internal/search"
	"github.com/olivier-w/bucketbox/internal/ui"
)

var (
	app         = kingpin.New("bucketbox", "Search and play the audio files of an S3 bucket")
	configPath  = app.Flag("config", "Path to config file").Default(defaultConfigPath()).String()
	initial     = app.Flag("search", "Initial search query").String()
	party       = app.Flag("party", "Start with the visualizer on").Bool()
	verbose     = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile     = app.Flag("logfile", `Path to log file, or "stderr"`).String()
	catalogFile = app.Flag("catalog-file", "Read object keys from a file instead of listing the bucket").ExistingFile()

	playCmd      = app.Command("play", "Open the player (default)").Default()
	listCmd      = app.Command("list", "Print the catalog and exit")
	listQuery    = listCmd.Arg("query", "Only print keys matching this query").String()
	listPlayable = listCmd.Flag("playable", "Only print keys the player can decode").Bool()
	listTags     = listCmd.Flag("tags", "Print artist and title read from each track's ID3 tag").Bool()
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bucketbox.yaml"
	}
	return filepath.Join(dir, "bucketbox", "config.yaml")
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath, applyFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	switch command {
	case listCmd.FullCommand():
		err = list(cfg)
	case playCmd.FullCommand():
		err = play(cfg)
	}
	if err != nil {
		zlog.Error().Err(err).Msg("exiting")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

// applyFlags overrides config values with command-line flags.
func applyFlags(cfg *config.Config) {
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logfile != "" {
		cfg.Log.File = *logfile
	}
	if *initial != "" {
		cfg.Search.Initial = *initial
	}
	if *party {
		cfg.Playback.PartyMode = true
	}
	if *catalogFile != "" {
		cfg.Catalog.File = *catalogFile
	}
}

func newSource(cfg *config.Config) (catalog.Source, error) {
	if cfg.Catalog.File != "" {
		keys, err := catalog.ReadKeysFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		return catalog.StaticSource{Keys: keys, PageSize: cfg.Catalog.PageSize}, nil
	}
	return catalog.NewS3Source(cfg.S3Options())
}

func list(cfg *config.Config) error {
	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := catalog.Load(ctx, src)
	if err != nil {
		return err
	}
	if *listQuery != "" {
		ids = search.Filter(ids, *listQuery)
	}
	for _, id := range ids {
		if *listPlayable && !media.IsPlayable(string(id)) {
			continue
		}
		if !*listTags {
			fmt.Println(id)
			continue
		}
		meta, err := player.ReadMetadata(ctx, nil, catalog.URL(cfg.BaseURL(), id), id)
		if err != nil {
			zlog.Warn().Err(err).Str("track", string(id)).Msg("reading tags")
		}
		fmt.Printf("%s\t%s\n", id, meta)
	}
	return nil
}

func play(cfg *config.Config) error {
	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program
	loop := sched.NewLoop()
	deck := player.NewDeck(func(ev player.Event) { program.Send(ev) }, player.Options{
		Volume: cfg.Playback.Volume,
	})

	model := ui.New(ui.Options{
		Context:    ctx,
		Source:     src,
		Deck:       deck,
		Sched:      loop,
		BaseURL:    cfg.BaseURL(),
		Quiet:      cfg.Debounce(),
		Initial:    cfg.Search.Initial,
		Exclusive:  cfg.Playback.Exclusive,
		PartyMode:  cfg.Playback.PartyMode,
		Visualizer: cfg.Visualizer,
	})
	program = tea.NewProgram(model, tea.WithAltScreen())
	loop.Bind(func(msg any) { program.Send(msg) })

	zlog.Info().Str("base_url", cfg.BaseURL()).Bool("party", cfg.Playback.PartyMode).Msg("starting")
	_, err = program.Run()
	cancel()
	deck.Close()
	if err != nil {
		return errors.Wrap(err, "running program")
	}
	return nil
}
