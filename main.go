package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/espstream/touchrelay/broker"
	"github.com/espstream/touchrelay/config"
	"github.com/espstream/touchrelay/ingest"
	"github.com/espstream/touchrelay/relay"
	"github.com/espstream/touchrelay/server"
	"github.com/espstream/touchrelay/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	device := flag.String("device", "", "serial device, e.g. /dev/ttyUSB0 (overrides config)")
	baud := flag.Int("baud", 0, "baud rate (overrides config)")
	host := flag.String("host", "", "bind host (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
	}
	if *host != "" {
		cfg.Network.Host = *host
	}
	if *port != 0 {
		cfg.Network.Port = *port
	}
	if cfg.Serial.Device == "" {
		log.Fatal("no serial device: set -device or serial.device in the config file")
	}

	if cfg.Log.File != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mirror broker.MessageBroker
	if cfg.Mirror.Enabled {
		rb, err := broker.NewRedisBroker(cfg.Mirror.RedisAddr, cfg.Mirror.Channel)
		if err != nil {
			log.Fatalf("failed to create Redis mirror: %v", err)
		}
		mirror = rb
		log.Printf("mirroring stream to Redis channel %q on %s", cfg.Mirror.Channel, cfg.Mirror.RedisAddr)
	}

	bridge := relay.NewBridge()
	clientManager := websocket.NewClientManager()
	handler := websocket.NewHandler(clientManager)
	broadcaster := relay.NewBroadcaster(bridge, clientManager, mirror)
	worker := ingest.NewWorker(cfg.Serial.Device, cfg.Serial.Baud, cfg.ReadTimeout(), ingest.OpenSerial, bridge)

	srv := server.NewServer(cfg.ListenAddr(), handler.HandleWebSocket)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()
	go broadcaster.Run(ctx)
	go srv.Start()
	log.Printf("touchrelay listening on %s, reading %s", cfg.ListenAddr(), cfg.Serial.Device)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("shutdown signal received")

	// Stop the ingest side first so the serial handle is released, then
	// tear down the subscriber side.
	cancel()
	<-workerDone

	srv.Shutdown(clientManager, mirror)
}
