package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PcapDigest/internal/api"
	"PcapDigest/internal/archive"
	"PcapDigest/internal/config"
	"PcapDigest/internal/engine/report"
	"PcapDigest/internal/publish"
	"PcapDigest/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	decoder := pcap.NewDecoder(cfg.Decoder.MaxPackets)

	// Optional report sinks. Analysis never depends on them; failures at
	// request time are logged, not surfaced.
	var sinks []report.Sink

	if cfg.Publisher.Enabled {
		publisher, err := publish.NewPublisher(cfg.Publisher)
		if err != nil {
			log.Fatalf("Failed to create report publisher: %v", err)
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		log.Printf("Report publisher enabled on subject %q", cfg.Publisher.Subject)
	}

	if cfg.Archive.Enabled {
		writer, err := archive.NewClickHouseWriter(cfg.Archive.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create report archive: %v", err)
		}
		defer writer.Close()
		sinks = append(sinks, writer)
		log.Println("Report archive enabled.")
	}

	handler := api.NewHandler(decoder, cfg.API.MaxUploadBytes, sinks...)

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
