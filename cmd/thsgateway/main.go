// THS Gateway - HTTP API over the THS broker trading terminal
//
// The gateway loads the broker's trading library, logs on with one account
// and exposes queries, orders and cancels as JSON over HTTP. It refuses to
// serve until the session has passed a health check, and logs off on every
// exit path.
//
// Usage:
//
//	thsgateway [account-name]            log on and serve
//	thsgateway token -subject S -role R  print an API bearer token
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/nerrad567/ths-gateway/migrations"

	"github.com/nerrad567/ths-gateway/internal/api"
	"github.com/nerrad567/ths-gateway/internal/audit"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/config"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/database"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/influxdb"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/mqtt"
	"github.com/nerrad567/ths-gateway/internal/picker"
	"github.com/nerrad567/ths-gateway/internal/ths"
	"github.com/nerrad567/ths-gateway/internal/trading"
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

// Replaced in tests.
var (
	openLibrary  = ths.Open
	loginOptions []ths.LoginOption
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - stdin, stdout: Used by the account picker and the token command
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	// Use default logger until config is loaded
	log := logging.Default()

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log = logging.New(cfg.Logging, version)

	if len(args) > 0 && args[0] == "token" {
		return runToken(cfg, args[1:], stdout)
	}

	log.Info("starting THS gateway",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)
	return serve(ctx, cfg, log, args, stdin, stdout)
}

// serve selects an account, logs on and serves the API until ctx is done.
func serve(ctx context.Context, cfg *config.Config, log *logging.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	accounts, err := ths.LoadAccounts(cfg.Gateway.AccountsFile)
	if err != nil {
		return err
	}
	account, err := selectAccount(accounts, args, stdin, stdout)
	if err != nil {
		return err
	}

	servers, err := ths.LoadServers(cfg.Gateway.ServersFile)
	if err != nil {
		return err
	}
	server, err := ths.ResolveServer(servers, account)
	if err != nil {
		return err
	}
	log.Info("account selected",
		"account", account.Name,
		"broker", account.BrokerName,
		"version", server.Version,
	)

	lib, err := openLibrary(cfg.Gateway.DLLPath)
	if err != nil {
		return fmt.Errorf("loading trading library: %w", err)
	}
	client := ths.NewClient(lib)
	defer func() {
		if client.LoggedIn() {
			log.Info("logging off", "account", account.Name)
		}
		//nolint:errcheck // Close always returns nil
		client.Close()
	}()

	infra, err := openInfrastructure(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close(log)

	loginErr := ths.LoginWithRetry(ctx, client, server, account, append([]ths.LoginOption{
		ths.WithLogger(log),
		ths.WithStateObserver(infra.loginObserver(account.Name, log)),
	}, loginOptions...)...)
	if loginErr != nil {
		return fmt.Errorf("logging on as %s: %w", account.Name, loginErr)
	}

	svc, err := trading.New(infra.tradingDeps(client, account.Name, log))
	if err != nil {
		return fmt.Errorf("creating trading service: %w", err)
	}
	runCtx, stopRecords := context.WithCancel(ctx)
	recordsDone := make(chan struct{})
	go func() {
		svc.Run(runCtx)
		close(recordsDone)
	}()
	// Runs before infra.close so queued records reach the database.
	defer func() {
		stopRecords()
		<-recordsDone
	}()

	if interval := cfg.KeepaliveInterval(); interval > 0 {
		go ths.RunKeepalive(ctx, client, interval, log)
		log.Info("session keepalive enabled", "interval", interval)
	}

	apiCfg := cfg.API
	if apiCfg.Port == 0 {
		apiCfg.Port = int(server.TradePort)
	}
	apiServer, err := api.New(api.Deps{
		Config:     apiCfg,
		Security:   cfg.Security,
		Logger:     log,
		Trading:    svc,
		AuditRepo:  infra.auditRepo(),
		Components: infra.components(),
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("THS gateway started", "account", account.Name, "port", apiCfg.Port)

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// loadConfig reads the config file. A missing file at the default path
// falls back to built-in defaults so a bare deployment (DLL, account.json
// and server.json side by side) works without one.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		cfg, err = config.Default()
		if err != nil {
			return nil, fmt.Errorf("loading default config: %w", err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// getConfigPath returns the config file path from environment or default.
func getConfigPath() string {
	if path := os.Getenv("THSGATEWAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// selectAccount picks the account named in args, or asks the operator.
func selectAccount(accounts []ths.Account, args []string, stdin io.Reader, stdout io.Writer) (*ths.Account, error) {
	if len(args) > 0 {
		account, ok := ths.FindAccount(accounts, args[0])
		if !ok {
			return nil, fmt.Errorf("账户 %q 不存在, 可用账户: %s", args[0], strings.Join(ths.AccountNames(accounts), ", "))
		}
		return account, nil
	}

	i, err := picker.Select(ths.AccountNames(accounts), stdin, stdout)
	if err != nil {
		return nil, fmt.Errorf("selecting account: %w", err)
	}
	return &accounts[i], nil
}

// infrastructure holds the optional side-effect sinks. Nil fields are
// disabled in config.
type infrastructure struct {
	db     *database.DB
	mqtt   *mqtt.Client
	influx *influxdb.Client
}

// openInfrastructure connects everything enabled in cfg. An enabled
// component that cannot connect fails startup.
func openInfrastructure(ctx context.Context, cfg *config.Config, log *logging.Logger) (*infrastructure, error) {
	infra := &infrastructure{}
	ok := false
	defer func() {
		if !ok {
			infra.close(log)
		}
	}()

	if cfg.Database.Enabled {
		db, err := database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		infra.db = db
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("audit database ready", "path", cfg.Database.Path)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		infra.mqtt = client
		client.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		client.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		infra.influx = client
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	ok = true
	return infra, nil
}

func (i *infrastructure) close(log *logging.Logger) {
	if i.influx != nil {
		log.Info("closing InfluxDB connection")
		if err := i.influx.Close(); err != nil {
			log.Error("error closing InfluxDB", "error", err)
		}
	}
	if i.mqtt != nil {
		log.Info("disconnecting from MQTT")
		if err := i.mqtt.Close(); err != nil {
			log.Error("error closing MQTT", "error", err)
		}
	}
	if i.db != nil {
		log.Info("closing database")
		if err := i.db.Close(); err != nil {
			log.Error("error closing database", "error", err)
		}
	}
}

// sessionState is the retained payload on the session topic.
type sessionState struct {
	State     string    `json:"state"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

// loginObserver publishes each login state transition.
func (i *infrastructure) loginObserver(account string, log *logging.Logger) func(ths.LoginState, int) {
	return func(state ths.LoginState, attempt int) {
		if i.influx != nil {
			i.influx.WriteLogin(account, state.String(), attempt)
		}
		if i.mqtt != nil {
			topic := i.mqtt.Topics().Session(account)
			payload := sessionState{State: state.String(), Attempt: attempt, Timestamp: time.Now().UTC()}
			if err := i.mqtt.PublishState(topic, payload); err != nil {
				log.Warn("session state publish failed", "topic", topic, "error", err)
			}
		}
	}
}

func (i *infrastructure) tradingDeps(client *ths.Client, account string, log *logging.Logger) trading.Deps {
	deps := trading.Deps{
		Terminal: client,
		Account:  account,
		Logger:   log,
		Audit:    i.auditRepo(),
	}
	if i.mqtt != nil {
		deps.Events = i.mqtt
		deps.Topics = i.mqtt.Topics()
	}
	if i.influx != nil {
		deps.Metrics = i.influx
	}
	return deps
}

func (i *infrastructure) auditRepo() audit.Repository {
	if i.db == nil {
		return nil
	}
	return audit.NewSQLiteRepository(i.db.DB)
}

func (i *infrastructure) components() map[string]api.HealthChecker {
	checks := map[string]api.HealthChecker{}
	if i.db != nil {
		checks["database"] = i.db
	}
	if i.mqtt != nil {
		checks["mqtt"] = i.mqtt
	}
	if i.influx != nil {
		checks["influxdb"] = i.influx
	}
	return checks
}
