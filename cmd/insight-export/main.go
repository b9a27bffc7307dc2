// Command insight-export runs one collection: it streams per-date insight
// rows for every configured item and writes them as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/insight-stream/internal/config"
	"github.com/ignite/insight-stream/internal/export"
	"github.com/ignite/insight-stream/internal/graph"
	"github.com/ignite/insight-stream/internal/insights"
	"github.com/ignite/insight-stream/internal/namecache"
	"github.com/ignite/insight-stream/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("o", "", "output CSV file (default stdout)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, out); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	client := graph.NewClient(graph.Config{
		BaseURL:        cfg.Graph.BaseURL,
		TimeoutSeconds: cfg.Graph.TimeoutSeconds,
		MaxRetries:     cfg.Graph.MaxRetries,
	})

	var cache insights.NameCache
	if cfg.Redis.Enabled {
		rc, err := namecache.NewFromURL(cfg.Redis.URL, time.Duration(cfg.Redis.TTLHours)*time.Hour)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		cache = rc
	}

	items := make([]insights.ItemRef, 0, len(cfg.Collection.Items))
	for _, it := range cfg.Collection.Items {
		items = append(items, insights.ItemRef{ID: it.ID, Token: it.Token})
	}

	itemType := insights.ItemType(cfg.Collection.ItemType)

	var policy insights.ErrorPolicy = insights.NewSkipMissing(cfg.Collection.SkipCodes, cfg.Collection.IgnoreMissing)
	if cfg.Collection.RetryAttempts > 0 {
		policy = insights.NewRetryN(cfg.Collection.RetryAttempts, policy)
	}

	stream, err := insights.NewStream(insights.Options{
		Client:      client,
		ItemType:    itemType,
		Items:       items,
		Token:       cfg.Graph.AccessToken,
		PastDays:    cfg.Collection.PastDays,
		MaxSpanDays: cfg.Collection.MaxSpanDays,
		Period:      cfg.Collection.Period,
		Metrics:     cfg.Collection.Metrics,
		Events:      cfg.Collection.Events,
		Breakdowns:  cfg.Collection.Breakdowns,
		Aggregate:   cfg.Collection.Aggregate,
		Policy:      policy,
		NameCache:   cache,
		OnProgress: func(p insights.Progress) {
			logger.Info("collection progress",
				"loaded", p.Loaded, "total", p.Total, "remaining", p.Total-p.Loaded)
		},
	})
	if err != nil {
		return err
	}

	columns := export.Columns(itemType, cfg.Collection.Metrics, cfg.Collection.Events, cfg.Collection.Breakdowns)
	writer := export.NewCSVWriter(out, columns)

	total := 0
	for {
		rows, err := stream.Next(ctx)
		if err == insights.ErrDone {
			break
		}
		if err != nil {
			return err
		}
		if err := writer.WriteBatch(rows); err != nil {
			return err
		}
		total += len(rows)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	logger.Info("export complete", "rows", total)
	return nil
}
