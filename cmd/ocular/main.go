package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/oculab/go-ocular/internal/config"
	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/detector"
	"github.com/oculab/go-ocular/pkg/pipeline"
	"github.com/oculab/go-ocular/pkg/session"
	"github.com/oculab/go-ocular/pkg/web"
)

func main() {
	detectorURL := flag.String("detector", "", "Landmark detector websocket URL (overrides env)")
	port := flag.String("port", "", "HTTP port (overrides env)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}
	if *detectorURL != "" {
		cfg.DetectorURL = *detectorURL
	}
	if *port != "" {
		cfg.Port = *port
	}

	if cfg.LogFile != "" {
		log.InitWithFile(cfg.LogLevel, cfg.LogFile)
	} else {
		log.Init(cfg.LogLevel)
	}

	log.Info("ocular engine starting",
		"port", cfg.Port, "mode", cfg.Mode, "session_dir", cfg.SessionDir)

	store, err := session.NewStore(cfg.SessionDir)
	if err != nil {
		log.Error("session store unavailable", "err", err)
		os.Exit(1)
	}

	pcfg := cfg.Pipeline()
	engine := pipeline.New(pcfg, store)
	queue := pipeline.NewFrameQueue(pcfg.QueueSize, pcfg.QueuePolicy)
	server := web.NewServer(cfg.Port, engine, queue, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if cfg.DetectorURL != "" {
		client := detector.New(detector.DefaultConfig(cfg.DetectorURL), queue)
		go client.Run(ctx)
		log.Info("detector client enabled", "url", cfg.DetectorURL)
	}

	go func() {
		if err := engine.Run(ctx, queue, server.Publish); err != nil && err != context.Canceled {
			log.Error("pipeline stopped", "err", err)
		}
	}()

	server.StartAsync()

	<-ctx.Done()

	if err := server.Shutdown(); err != nil {
		log.Warn("server shutdown error", "err", err)
	}
	log.Info("goodbye")
}
