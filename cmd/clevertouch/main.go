// Command clevertouch authenticates against the CleverTouch cloud API and
// prints the account's homes and devices, radiator state included.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clevertouch"
	"clevertouch/api"
	"clevertouch/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	email := flag.String("email", "", "account email (or CLEVERTOUCH_EMAIL)")
	password := flag.String("password", "", "account password (or CLEVERTOUCH_PASSWORD)")
	token := flag.String("token", "", "stored refresh token (or CLEVERTOUCH_TOKEN)")
	host := flag.String("host", "", "vendor host override")
	flag.Parse()

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	} else {
		cfg.Account.Email = os.Getenv("CLEVERTOUCH_EMAIL")
		cfg.Account.Password = os.Getenv("CLEVERTOUCH_PASSWORD")
		cfg.Account.Token = os.Getenv("CLEVERTOUCH_TOKEN")
		cfg.Account.Host = "e3.lvi.eu"
		cfg.Account.Manufacturer = "purmo"
		cfg.Log.Level = "info"
		cfg.Log.Format = "text"
	}
	if *email != "" {
		cfg.Account.Email = *email
	}
	if *password != "" {
		cfg.Account.Password = *password
	}
	if *token != "" {
		cfg.Account.Token = *token
	}
	if *host != "" {
		cfg.Account.Host = *host
	}

	logger := setupLogger(cfg.Log)

	if cfg.Account.Email == "" {
		logger.Error("email must be set via -email, the config file or CLEVERTOUCH_EMAIL")
		os.Exit(1)
	}
	if cfg.Account.Password == "" && cfg.Account.Token == "" {
		logger.Error("either a password or a stored token is required")
		os.Exit(1)
	}
	if cfg.Account.Password != "" && cfg.Account.Token != "" {
		logger.Warn("both password and token set; preferring password")
		cfg.Account.Token = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	session := api.NewSessionWithHost(
		cfg.Account.Email, cfg.Account.Token, cfg.Account.Host, cfg.Account.Manufacturer,
	)
	account := clevertouch.NewAccountWithSession(session)
	account.SetLogger(logger)
	defer account.Close()

	if cfg.Account.Password != "" {
		if err := account.Authenticate(ctx, cfg.Account.Email, cfg.Account.Password); err != nil {
			logger.Error("authentication failed", "error", err)
			os.Exit(1)
		}
	}

	if err := run(ctx, account); err != nil {
		logger.Error("walking account failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, account *clevertouch.Account) error {
	user, err := account.User(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Account %s (user id %s)\n", account.Email(), user.UserID)

	for homeID, info := range user.Homes {
		fmt.Printf("  Home %s: %s\n", homeID, info.Label)

		home, err := account.Home(ctx, homeID)
		if err != nil {
			return err
		}

		for deviceID, device := range home.Devices {
			fmt.Printf("    Device %s: %s (%s)\n", deviceID, device.Label(), device.Type())
			printDevice(device)
		}
	}
	return nil
}

func printDevice(device clevertouch.Device) {
	switch d := device.(type) {
	case *clevertouch.Radiator:
		for name, temp := range d.Temperatures() {
			if celsius, ok := temp.Celsius(); ok {
				fmt.Printf("      temp %-8s = %.1f C\n", name, celsius)
			} else {
				fmt.Printf("      temp %-8s = (no reading)\n", name)
			}
		}
		fmt.Printf("      heat mode = %s, active = %v\n", d.HeatMode(), d.Active())
		fmt.Printf("      boost time setting = %ds\n", d.BoostTime())
		if remaining, ok := d.BoostRemaining(); ok {
			fmt.Printf("      boost time remaining = %ds\n", remaining)
		}
	case *clevertouch.Light:
		fmt.Printf("      light is %s\n", onOff(d.IsOn()))
	case *clevertouch.Outlet:
		fmt.Printf("      outlet is %s\n", onOff(d.IsOn()))
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
