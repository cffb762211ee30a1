// Package cmd provides the command-line interface for find404.
// It handles command parsing, configuration loading, and crawl execution.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/find404/internal/config"
	"github.com/masahif/find404/internal/crawler"
	"github.com/masahif/find404/internal/logging"
	"github.com/masahif/find404/internal/report"
	"github.com/masahif/find404/internal/scope"
	"github.com/masahif/find404/internal/storage"
)

// ErrFindings is returned when the crawl found broken or oversized pages.
// The findings themselves have already been printed.
var ErrFindings = errors.New("broken links found")

var (
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// newRootCmd builds the find404 command with its own viper instance
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "find404 <URL>",
		Short: "Crawl a website and find broken links",
		Long: `find404 crawls a website starting from a seed URL and checks every link it finds.

Pages on the seed's domain are crawled recursively; links to other sites are
checked once but never followed. Broken links (HTTP 4xx/5xx) and pages larger
than --max-size make the command exit with status 1.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind404(cmd, args, v)
		},
	}

	defaults := config.DefaultConfig()

	// Configuration file flag
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./find404.yml, then $XDG_CONFIG_HOME/find404/find404.yml)")

	// Configuration management flags
	cmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Report flags
	cmd.Flags().StringP("format", "f", defaults.Format, "Output format: console, jsonl or markdown")
	cmd.Flags().StringP("output", "o", defaults.Output, "Output file, '-' for stdout")
	cmd.Flags().Int64("max-size", defaults.MaxSize, "Maximum allowed size in bytes for any page on the crawled domain (0=disabled)")

	// Crawl flags
	cmd.Flags().IntP("workers", "w", defaults.Workers, "Number of parallel workers")
	cmd.Flags().Int("max-depth", defaults.MaxDepth, "Maximum depth to crawl (-1=no limit)")
	cmd.Flags().DurationP("timeout", "t", defaults.RequestTimeout, "HTTP request timeout")
	cmd.Flags().StringP("user-agent", "u", defaults.UserAgent, "HTTP User-Agent header")
	cmd.Flags().String("domain-mode", defaults.DomainMode, "Domain comparison: labels (last two host labels) or publicsuffix")
	cmd.Flags().StringSliceP("header", "H", []string{}, "Custom HTTP headers in 'Name: Value' format (use multiple times for multiple headers)")

	// Database flags
	cmd.Flags().StringP("database", "d", defaults.DatabasePath, "Export results to this SQLite database file")
	cmd.Flags().Int64("show-run", 0, "Print a run stored in --database and exit (0 = latest run)")

	// Logging flags
	cmd.Flags().String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().String("log-file", defaults.LogFile, "Also write JSON logs to this file")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"format", "format"},
		{"output", "output"},
		{"max_size", "max-size"},
		{"workers", "workers"},
		{"max_depth", "max-depth"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"domain_mode", "domain-mode"},
		{"headers", "header"},
		{"database_path", "database"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := v.BindPFlag(bind.viperKey, cmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}

	// Keys without a flag still need a default so that the environment is consulted
	v.SetDefault("accept", defaults.Accept)

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(config.ConfigDir())
		v.SetConfigType("yaml")
		v.SetConfigName(config.AppName)
	}

	v.SetEnvPrefix("FIND404")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fmt.Fprintf(stderr, "Using config file: %s\n", v.ConfigFileUsed())
	return nil
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func showCurrentConfig(out io.Writer, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Fprintf(out, "# Current find404 Configuration\n")
	fmt.Fprintf(out, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(out, "# Configuration file search paths: ./find404.yml, %s\n", filepath.Join(config.ConfigDir(), "find404.yml"))
	fmt.Fprintf(out, "# Environment variables prefix: FIND404_\n\n")

	fmt.Fprint(out, string(yamlData))

	fmt.Fprintf(out, "\n# Configuration source priority:\n")
	fmt.Fprintf(out, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(out, "# 2. Environment variables (FIND404_ prefix)\n")
	fmt.Fprintf(out, "# 3. Configuration file (find404.yml)\n")
	fmt.Fprintf(out, "# 4. Default values (lowest priority)\n")

	return nil
}

func printExamples(out io.Writer) {
	fmt.Fprintln(out, "find404 - Crawl websites and find broken links")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: find404 <URL> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  # Check for broken links (console output)")
	fmt.Fprintln(out, "  find404 example.com")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  # Check for broken links with JSONL output")
	fmt.Fprintln(out, "  find404 example.com --format jsonl")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  # Fail on pages over 1MB and keep the results in SQLite")
	fmt.Fprintln(out, "  find404 example.com --max-size 1048576 --database find404.db")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  # Show the broken links of the last stored run")
	fmt.Fprintln(out, "  find404 --database find404.db --show-run 0")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "For more options, use: find404 --help")
}

func runFind404(cmd *cobra.Command, args []string, v *viper.Viper) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	if showConfig {
		return showCurrentConfig(cmd.OutOrStdout(), cfg)
	}

	if cmd.Flags().Changed("show-run") {
		runID, _ := cmd.Flags().GetInt64("show-run")
		return showRun(cmd.OutOrStdout(), cfg.DatabasePath, runID)
	}

	if len(args) == 0 {
		printExamples(cmd.OutOrStdout())
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(cfg.LogLevel)
	if verbose {
		logConfig.Level = slog.LevelDebug
	}
	logConfig.FilePath = cfg.LogFile
	logConfig.Output = cmd.ErrOrStderr()

	var progress *progressObserver
	if f, ok := progressWriter(cmd.ErrOrStderr(), verbose); ok {
		progress = newProgressObserver(f)
		logConfig.Output = progress.Writer(f)
	}

	logger, closer, err := logging.NewLogger(*logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, progress)
}

// run crawls rawSeed, writes the report and evaluates the findings.
// An interrupted crawl still reports what it collected. progress may be nil.
func run(ctx context.Context, cfg *config.Config, rawSeed string, stdout, stderr io.Writer, logger *slog.Logger, progress *progressObserver) error {
	seed, err := scope.SeedURL(rawSeed)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawSeed, err)
	}

	classifier, err := scope.NewClassifier(scope.Mode(cfg.DomainMode))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	headers, err := cfg.ParseHeaders()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	httpClient := crawler.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)
	httpClient.SetAccept(cfg.Accept)
	httpClient.SetCustomHeaders(headers)
	defer httpClient.Close()

	observers := []crawler.Observer{crawler.NewLogObserver(logger)}
	if progress != nil {
		observers = append(observers, progress)
	}

	c, err := crawler.NewCrawler(crawler.Options{
		MaxWorkers: cfg.Workers,
		MaxDepth:   cfg.MaxDepth,
		Classifier: classifier,
	}, crawler.NewPageFetcher(httpClient), crawler.NewMultiObserver(observers...))
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}

	logger.Info("Starting crawl",
		"seed", seed,
		"workers", cfg.Workers,
		"max_depth", cfg.MaxDepth,
		"domain_mode", classifier.Mode(),
	)

	started := time.Now()
	if progress != nil {
		progress.Start()
	}
	results, crawlErr := c.Crawl(ctx, seed)
	if progress != nil {
		progress.Stop()
	}
	if crawlErr != nil && !isInterrupted(crawlErr) {
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}
	finished := time.Now()

	stats := c.GetStats()
	if crawlErr != nil {
		logger.Warn("Crawl interrupted, reporting partial results", "error", crawlErr)
	}
	logger.Info("Crawl finished",
		"urls", stats.PagesCrawled,
		"failures", stats.ErrorCount,
		"waves", stats.Waves,
		"duration", stats.Duration,
	)

	if err := writeReport(cfg, seed, results, stdout); err != nil {
		return err
	}

	if cfg.DatabasePath != "" {
		if err := exportResults(cfg.DatabasePath, seed, started, finished, results, logger); err != nil {
			return err
		}
	}

	findings := report.Evaluate(seed, results, cfg.MaxSize, classifier)
	for _, finding := range findings {
		fmt.Fprintln(stderr, finding)
	}

	if crawlErr != nil {
		return crawlErr
	}
	if findings.HasFindings() {
		return ErrFindings
	}
	return nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// writeReport renders the results to stdout or to the configured output file
func writeReport(cfg *config.Config, seed string, results crawler.Results, stdout io.Writer) (err error) {
	out := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		if dir := filepath.Dir(cfg.Output); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		file, createErr := os.Create(cfg.Output)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()
		out = file
	}

	writer, err := report.NewWriter(cfg.Format, out)
	if err != nil {
		return err
	}

	if err := writer.Write(seed, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// exportResults appends the run to the SQLite database at dbPath
func exportResults(dbPath, seed string, started, finished time.Time, results crawler.Results, logger *slog.Logger) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	runID, err := store.SaveRun(seed, started, finished, results)
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	if version != "" {
		if err := store.SetMeta(versionMetaKey, version); err != nil {
			logger.Warn("Failed to record version", "error", err)
		}
	}

	logger.Info("Exported results", "database", dbPath, "run_id", runID, "urls", len(results))
	return nil
}
