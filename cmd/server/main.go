package main

import (
	"crypto/tls"
	"log"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/GaddhiOmana/liveslides/internal/config"
	"github.com/GaddhiOmana/liveslides/internal/db"
	"github.com/GaddhiOmana/liveslides/internal/handlers"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	if err := db.InitDatabase(cfg.DB.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	deckService := services.NewDeckService(db.DB)
	wsService := services.NewWebSocketService(cfg.Sync, clockwork.NewRealClock())

	// Optional cluster bridge: lets several instances serve the same rooms
	if cfg.NATS.URL != "" {
		bridge, err := services.NewBridge(services.DefaultBridgeConfig(cfg.NATS.URL), wsService)
		if err != nil {
			log.Fatalf("Failed to connect cluster bridge: %v", err)
		}
		defer bridge.Close()
		wsService.SetPublisher(bridge)
	}

	go wsService.Run()
	defer wsService.Stop()

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(wsService, deckService)
	staticHandler := handlers.NewStaticHandler(cfg.Static.Dir)
	roomHandler := handlers.NewRoomHandler(deckService)
	deckHandler := handlers.NewDeckHandler(deckService)

	// Setup routes
	router := handlers.SetupRoutes(wsHandler, staticHandler, roomHandler, deckHandler)

	// Configure server
	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	// Configure TLS if enabled
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{
			MinVersion: getTLSVersion(cfg.TLS.MinVersion),
		}

		log.Printf("Starting HTTPS server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
		log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
		log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)

		log.Fatal(server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile))
	} else {
		log.Printf("Starting HTTP server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Warning: HTTP mode is not recommended for production")

		log.Fatal(server.ListenAndServe())
	}
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
