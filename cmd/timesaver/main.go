package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/db"
	"github.com/ajramos/timesaver/internal/gmail"
	"github.com/ajramos/timesaver/internal/llm"
	"github.com/ajramos/timesaver/internal/services"
	"github.com/ajramos/timesaver/internal/tui"
	"github.com/ajramos/timesaver/internal/version"
	"github.com/ajramos/timesaver/pkg/auth"
)

func main() {
	configPathFlag := flag.String("config", "", "Path to JSON or YAML configuration file (default: ~/.config/timesaver/config.json)")
	credPathFlag := flag.String("credentials", "", "Path to OAuth client credentials JSON (default: ~/.config/timesaver/credentials.json)")
	setupFlag := flag.Bool("setup", false, "Run interactive setup wizard")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TIMESAVER_CONFIG      Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  TIMESAVER_CREDENTIALS Override default credentials file path\n")
		fmt.Fprintf(os.Stderr, "  TIMESAVER_TOKEN       Override default token file path\n")
	}

	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	if *setupFlag {
		if err := runSetupWizard(os.Stdin, os.Stdout, config.DefaultConfigPath()); err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		return
	}

	configPath := getConfigPath(*configPathFlag)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}

	if err := run(cfg, *credPathFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, credFlag string) error {
	logger, closeLog := openLogger(cfg)
	defer closeLog()

	credPath := getCredentialsPath(credFlag, cfg.Credentials)
	tokenPath := getTokenPath("", cfg.Token)
	if credPath == "" {
		return fmt.Errorf("gmail credentials file is required; provide it via --credentials or the config file")
	}
	if _, err := os.Stat(credPath); err != nil {
		return fmt.Errorf("credentials file not found at %s; download OAuth client credentials from Google Cloud Console (or run --setup)", credPath)
	}

	ctx := context.Background()
	service, err := auth.NewGmailService(ctx, auth.NewOAuth2Config(credPath, tokenPath, auth.GmailScopes...))
	if err != nil {
		return fmt.Errorf("could not initialize Gmail service: %w", err)
	}
	gmailClient := gmail.NewClient(service)

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Printf("Warning: could not initialize LLM provider (%s): %v", cfg.LLM.Provider, err)
		logger.Warn("llm provider unavailable", "provider", cfg.LLM.Provider, "error", err)
		provider = nil
	}

	var cache services.CacheService
	if cfg.LLM.CacheEnabled {
		store, err := db.OpenMemory(ctx)
		if err != nil {
			logger.Warn("summary cache disabled", "error", err)
		} else {
			defer store.Close()
			cache = services.NewCacheService(db.NewCacheStore(store), cfg.LLM.Model)
		}
	}

	aiService := services.NewAIService(provider, cache, cfg, logger)
	app := tui.NewApp(cfg, tui.Deps{
		Emails:  services.NewEmailService(gmailClient, aiService, cfg, logger),
		Chat:    services.NewChatService(provider, cfg, logger),
		AI:      aiService,
		Timer:   services.NewTimerService(logger),
		Account: gmailClient,
		Logger:  logger,
	})
	return app.Run()
}

// openLogger writes to the configured log file, or discards logs when it cannot be opened
func openLogger(cfg *config.Config) (*slog.Logger, func()) {
	path := expandPath(cfg.LogFile)
	if path == "" {
		path = config.DefaultLogPath()
	}
	if path == "" {
		return tui.DiscardLogger(), func() {}
	}
	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	logger, closer, err := tui.NewFileLogger(path, level)
	if err != nil {
		log.Printf("Warning: could not open log file %s: %v", path, err)
		return tui.DiscardLogger(), func() {}
	}
	slog.SetDefault(logger)
	return logger, func() { _ = closer.Close() }
}

// buildProvider creates the configured LLM provider; a nil provider leaves summaries empty
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		return nil, fmt.Errorf("llm.model is not set")
	}
	region := cfg.LLM.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	return llm.NewProviderFromConfig(llm.Settings{
		Provider: cfg.LLM.Provider,
		Endpoint: cfg.LLM.Endpoint,
		Region:   region,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.GetAPIKey(),
		Timeout:  cfg.GetLLMTimeout(),
	})
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable TIMESAVER_CONFIG
// 3. Default path ~/.config/timesaver/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("TIMESAVER_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}
	return config.DefaultConfigPath()
}

// getCredentialsPath: CLI flag, TIMESAVER_CREDENTIALS, config value, then the default
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("TIMESAVER_CREDENTIALS"); envPath != "" {
		return expandPath(envPath)
	}
	if configValue != "" {
		return expandPath(configValue)
	}
	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// getTokenPath: CLI flag, TIMESAVER_TOKEN, config value, then the default
func getTokenPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("TIMESAVER_TOKEN"); envPath != "" {
		return expandPath(envPath)
	}
	if configValue != "" {
		return expandPath(configValue)
	}
	_, tokenPath := config.DefaultCredentialPaths()
	return tokenPath
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// runSetupWizard reports what is missing and offers to write a default config file
func runSetupWizard(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintln(out, "TimeSaver Setup")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)

	credPath, tokenPath := config.DefaultCredentialPaths()

	configExists := false
	if _, err := os.Stat(configPath); err == nil {
		configExists = true
		fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Will create configuration file: %s\n", configPath)
	}

	if _, err := os.Stat(credPath); err == nil {
		fmt.Fprintf(out, "Credentials file found: %s\n", credPath)
	} else {
		fmt.Fprintf(out, "Credentials file missing: %s\n\n", credPath)
		fmt.Fprintln(out, "To set up Gmail API credentials:")
		fmt.Fprintln(out, "1. Go to https://console.cloud.google.com/")
		fmt.Fprintln(out, "2. Create a new project or select an existing one")
		fmt.Fprintln(out, "3. Enable the Gmail API")
		fmt.Fprintln(out, "4. Create OAuth 2.0 credentials (Desktop application)")
		fmt.Fprintf(out, "5. Download the JSON file and save it as:\n   %s\n\n", credPath)
	}

	if _, err := os.Stat(tokenPath); err == nil {
		fmt.Fprintf(out, "Token file exists: %s\n", tokenPath)
	} else {
		fmt.Fprintf(out, "Token will be created on first login: %s\n", tokenPath)
	}

	if !configExists {
		fmt.Fprint(out, "\nCreate default configuration file? [Y/n]: ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response == "" || response == "y" || response == "yes" {
			if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
				return fmt.Errorf("create config file: %w", err)
			}
			fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Setup complete. Set your model API key (AI71_API_KEY by default) and run:")
	fmt.Fprintf(out, "   %s\n", os.Args[0])
	return nil
}
