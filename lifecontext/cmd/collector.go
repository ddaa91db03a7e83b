// Command-line entrypoint for the page collector.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifecontext/lifecontext/browser"
	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/relay"
	"lifecontext/lifecontext/utils/logging"
)

var (
	throttleMs   int64
	pollInterval time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "collector",
		Short: "Watches a page and ships significant content changes to the ingestion API",
	}

	watch := &cobra.Command{
		Use:   "watch <url>",
		Short: "Open a page and stream its content changes until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0])
		},
	}
	watch.Flags().Int64Var(&throttleMs, "throttle-ms", crawler.DefaultThrottleDelay.Milliseconds(), "minimum delay between uploads in milliseconds")
	watch.Flags().DurationVar(&pollInterval, "poll", browser.DefaultPollInterval, "page polling interval")

	root.AddCommand(watch)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(targetURL string) error {
	logging.InitLogger()
	cfg := config.LoadConfig()

	settingsStore, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings := settingsStore.Get()

	page, err := browser.NewPageSession()
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer page.Close()

	if err := page.Open(targetURL); err != nil {
		return fmt.Errorf("open %s: %w", targetURL, err)
	}
	doc, err := page.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	loc, err := crawler.LocationFromURL(doc.URL())
	if err != nil {
		return fmt.Errorf("parse page url: %w", err)
	}
	session := crawler.NewSession(loc, settings.FrontendHost, settings.FrontendPort, settings.CrawlEnabled)
	if session.ShouldSkip() {
		logging.AppLogger.Info("page matches own frontend, not watching",
			zap.String("url", doc.URL()),
		)
		return nil
	}

	apiBase := fmt.Sprintf("http://%s:%s", settings.APIHost, settings.APIPort)
	bus := relay.NewBus()
	rl := relay.New(relay.Endpoints{
		Upload:     apiBase + "/api/upload_web_data",
		Chat:       apiBase + "/api/chat/generate",
		ChatStream: apiBase + "/api/chat/generate_stream",
	}, http.DefaultClient, bus)
	rl.Register(bus)
	bus.Handle(relay.MsgStreamChunk, func(ctx context.Context, msg relay.Message) (any, error) {
		var chunk relay.StreamChunk
		if err := json.Unmarshal(msg.Payload, &chunk); err != nil {
			return nil, err
		}
		fmt.Println(string(chunk.Data))
		return nil, nil
	})

	watcher := browser.NewSnapshotWatcher(page, pollInterval, crawler.DefaultObservedSelectors)
	uploader := relay.NewChannelUploader(bus)
	manager := crawler.NewManager(session, page, watcher, uploader, crawler.ManagerOptions{
		ThrottleDelay: time.Duration(throttleMs) * time.Millisecond,
	})
	defer manager.Close()
	relay.NewPageAgent(manager, session).Register(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.RunInitialCrawl(ctx)
	manager.Init()

	vis := crawler.NewVisibilityManager(manager, session)
	go vis.Run(ctx, page.VisibilityEvents())

	logging.AppLogger.Info("collector watching page",
		zap.String("url", doc.URL()),
		zap.Int64("throttleMs", throttleMs),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	manager.Stop()
	bus.Close()
	success, failure := rl.Counters()
	logging.AppLogger.Info("collector stopped",
		zap.Int64("uploadsOk", success),
		zap.Int64("uploadsFailed", failure),
	)
	return nil
}
