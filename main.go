package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/ltegw/modem"
)

// pollInterval is how often the notification backlog is drained.
const pollInterval = 100 * time.Millisecond

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.String("apn", "", "Packet data APN")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	modemConfig, err := modem.NewConfigBuilder().
		WithSerialPort(config.SerialPort).
		WithBaud(config.BaudRate).
		WithAutoTimeZone(true).
		WithLogger(logger.With("component", "modem")).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	m, err := modem.New(modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting LTE gateway", "port", config.SerialPort)

	if err := m.Begin(); err != nil {
		logger.Error("Failed to initialize modem", "error", err)
		os.Exit(1)
	}

	if err := setupNetwork(m, config, logger); err != nil {
		logger.Error("Failed to configure network", "error", err)
		os.Exit(1)
	}

	m.OnPing(func(ev modem.PingResult) {
		logger.Info("Ping reply", "host", ev.Host, "ip", ev.IP, "ttl", ev.TTL, "rtt", ev.RTT)
	})
	m.OnEPSRegistration(func(ev modem.Registration) {
		logger.Info("Registration changed", "status", ev.Status, "area", ev.Area, "cell", ev.CellID)
	})
	m.OnSocketClosed(func(socket int) {
		logger.Info("Socket closed by remote", "socket", socket)
	})

	server := &Server{
		Logger: logger.With("component", "server"),
		Modem:  m,
	}
	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: server,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Drain module notifications until shutdown
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sigChan:
				return
			case <-ticker.C:
				server.Poll()
			}
		}
	}()

	// Wait for interrupt signal
	<-pollDone
	logger.Info("Received shutdown signal")

	logger.Info("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}

// setupNetwork unlocks the SIM if needed, applies the APN and enables
// registration change notifications.
func setupNetwork(m *modem.Modem, config *Config, logger *slog.Logger) error {
	status, err := m.SIMStatus()
	if err != nil {
		return err
	}
	if status == "SIM PIN" {
		if config.SimPIN == "" {
			logger.Error("SIM requires a PIN but none is configured")
			return modem.ErrInvalidParam
		}
		if err := m.EnterPIN(config.SimPIN); err != nil {
			return err
		}
	}

	if config.APN != "" {
		if err := m.SetAPN(1, config.APN); err != nil {
			return err
		}
	}

	// Long form reports carry area and cell identifiers.
	if err := m.SetEPSRegistrationReporting(2); err != nil {
		return err
	}
	return m.SetRegistrationReporting(2)
}
