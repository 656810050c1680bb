// OpenLumen RDM Gateway
//
// This is the main entry point for the RDM gateway. The gateway sits
// between HTTP/WebSocket clients and an olad shim reached over MQTT,
// turning section-level device management requests into E1.20 RDM
// command sequences:
//   - Section read/write dispatch with response classification
//   - Universe UID fetch and discovery triggering
//   - Background manufacturer/device label resolution
//   - Sensor readings recorded to InfluxDB, writes audited to SQLite
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/openlumen/rdm-gateway/migrations"

	"github.com/openlumen/rdm-gateway/internal/api"
	"github.com/openlumen/rdm-gateway/internal/audit"
	"github.com/openlumen/rdm-gateway/internal/bridges/olad"
	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/config"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/database"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/influxdb"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/logging"
	"github.com/openlumen/rdm-gateway/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting RDM gateway",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Write audit repository
	auditRepo := audit.NewSQLiteRepository(db.DB)
	auditRepo.SetOnError(func(err error) {
		log.Error("audit write error", "error", err)
	})

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the olad bridge
	bridge, err := olad.NewBridge(olad.Options{
		Client:           mqttClient,
		CommandTimeout:   cfg.GetCommandTimeout(),
		DiscoveryTimeout: cfg.GetDiscoveryTimeout(),
		Logger:           log,
	})
	if err != nil {
		return fmt.Errorf("creating olad bridge: %w", err)
	}
	if startErr := bridge.Start(); startErr != nil {
		return fmt.Errorf("starting olad bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping olad bridge")
		bridge.Close()
	}()
	log.Info("olad bridge started")

	// RDM controller on top of the bridge
	ctrl := controller.New(bridge)
	ctrl.SetLogger(log)
	ctrl.SetWriteAuditor(auditRepo)
	if influxClient != nil {
		ctrl.SetSensorRecorder(influxClient)
	}

	// Start REST/WebSocket API
	apiServer, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Controller: ctrl,
		AuditRepo:  auditRepo,
		Bridge:     bridge,
		DB:         db,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fan resolved labels out to WebSocket subscribers and publish the
	// per-universe label snapshot retained so late MQTT subscribers see
	// the current state. Installed before the listener opens so the first
	// HTTP-triggered resolution already sees the observer.
	ctrl.Resolver().SetOnResolved(func(event controller.LabelEvent) {
		apiServer.BroadcastLabelEvent(event)
		publishLabelSnapshot(mqttClient, ctrl, event.Universe, log)
	})

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Keep the label cache scoped to universes olad still exposes
	startUniversePoll(ctx, cfg, bridge, ctrl, log)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. olad bridge
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("RDM gateway stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RDMGW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RDMGW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// publishLabelSnapshot publishes the full resolved-label map for one
// universe as a retained MQTT message.
func publishLabelSnapshot(client *mqtt.Client, ctrl *controller.Controller, universe uint, log *logging.Logger) {
	snapshot := make(map[string]controller.Labels)
	for uid, labels := range ctrl.CachedLabels(universe) {
		snapshot[uid.String()] = labels
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Error("encoding label snapshot", "universe", universe, "error", err)
		return
	}

	topic := mqtt.Topics{}.CoreLabels(universe)
	if err := client.PublishRetained(topic, payload); err != nil {
		log.Warn("publishing label snapshot", "topic", topic, "error", err)
	}
}

// startUniversePoll periodically asks the olad shim which universes it
// exposes and notifies the controller, so label caches for removed
// universes are released. Disabled when the interval is zero.
func startUniversePoll(ctx context.Context, cfg *config.Config, bridge *olad.Bridge, ctrl *controller.Controller, log *logging.Logger) {
	interval := time.Duration(cfg.RDM.UniversePollInterval) * time.Second
	if interval <= 0 {
		log.Info("universe polling disabled")
		return
	}

	poll := func() {
		err := bridge.ListUniverses(func(universes []uint, err error) {
			if err != nil {
				log.Warn("universe list refresh failed", "error", err)
				return
			}
			ctrl.NotifyActiveUniverses(universes)
		})
		if err != nil {
			log.Warn("universe list request failed", "error", err)
		}
	}

	go func() {
		// Prime the active set immediately rather than waiting a full tick.
		poll()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	log.Info("universe polling started", "interval", interval.String())
}

// healthCheck verifies all infrastructure connections are healthy.
// The InfluxDB client may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// olad shim health is observed passively via its retained health
	// topic; an absent shim surfaces as degraded in /api/v1/health.

	return nil
}
