// Package main is the entry point for sysstats, which prints host telemetry
// (CPU, memory, disks, network interfaces, OS and process table) as tables
// and lets the tables be queried with SQL.
//
// Usage:
//
//	sysstats [flags] [table ...]
//	sysstats --query "SELECT mount_point, free_space FROM sys_disk_info" --unit GiB
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/sysstats/internal/collector"
	"github.com/Guliveer/sysstats/internal/config"
	"github.com/Guliveer/sysstats/internal/filter"
	"github.com/Guliveer/sysstats/internal/platform"
	"github.com/Guliveer/sysstats/internal/render"
	"github.com/Guliveer/sysstats/internal/sqlstore"
	"github.com/Guliveer/sysstats/internal/tablefunc"
)

// version is set at build time via -ldflags.
var version = "dev"

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		configPath  string
		envFile     string
		writeConfig string
		query       string
		list        bool
		showVersion bool
		cli         config.CLIOverrides
	)

	flagSet := pflag.NewFlagSet("sysstats", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to configuration file (default: search ~/.sysstats and /etc/sysstats)")
	flagSet.StringVar(&envFile, "env-file", ".env", "read SYSSTATS_* variables from this file if it exists")
	flagSet.StringVarP(&cli.Unit, "unit", "u", "", "unit for byte columns: bytes, KB, KiB, MB, MiB, GB, GiB, TB, TiB")
	flagSet.StringVarP(&cli.Format, "format", "f", "", "output format: "+strings.Join(render.Formats(), ", "))
	flagSet.StringVarP(&query, "query", "q", "", "run a SQL query over the tables it references")
	flagSet.StringVar(&cli.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&writeConfig, "write-config", "", "write the effective configuration to this path and exit")
	flagSet.BoolVarP(&list, "list", "l", false, "list the available tables and exit")
	flagSet.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &exitError{code: 2, err: err}
	}

	if showVersion {
		fmt.Fprintf(stdout, "sysstats %s\n", version)
		return nil
	}

	cli.EnvFile = envFile
	var cfg *config.Config
	var err error
	if flagSet.Changed("config") {
		cfg, err = config.LoadLayered(cli, embeddedConfig, configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("invalid configuration: %w", err)}
	}

	logger := initLogger(cfg, stderr)
	defer logger.Sync()

	if writeConfig != "" {
		if err := config.WriteConfig(cfg, writeConfig); err != nil {
			return err
		}
		logger.Info("Configuration written", zap.String("path", writeConfig))
		return nil
	}

	format, _ := render.ParseFormat(cfg.Output.Format)

	provider := platform.New(platform.Options{
		ProcRoot:   cfg.Paths.ProcRoot,
		SysRoot:    cfg.Paths.SysRoot,
		EtcRoot:    cfg.Paths.EtcRoot,
		MountTable: cfg.Paths.MountTable,
		Filter:     filter.New(cfg.Filter.IgnoreFSTypes, cfg.Filter.IgnoreMountPoints, logger),
	}, logger)
	logger.Debug("Platform provider selected", zap.String("platform", provider.Name()))

	functions := tablefunc.NewRegistry(collector.NewDefaultRegistry(provider, logger), logger)

	if list {
		return render.Write(stdout, format, []*tablefunc.Result{listFunctions(functions)})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Collection.Timeout.Duration)
	defer cancel()

	params := tablefunc.Params{tablefunc.UnitParam: cfg.Output.Unit}

	if query != "" {
		return runQuery(ctx, functions, query, params, format, stdout, logger)
	}

	results, err := functions.CallAll(ctx, flagSet.Args(), params)
	if len(results) > 0 {
		if werr := render.Write(stdout, format, results); werr != nil {
			return werr
		}
	}
	return classify(err)
}

// runQuery loads every table the query references into an in-memory
// database and prints the query result.
func runQuery(ctx context.Context, functions *tablefunc.Registry, query string, params tablefunc.Params, format render.Format, stdout io.Writer, logger *zap.Logger) error {
	var names []string
	for _, fn := range functions.Functions() {
		names = append(names, fn.Name)
	}
	referenced := sqlstore.Referenced(query, names)
	logger.Debug("Tables referenced by query", zap.Strings("tables", referenced))

	var results []*tablefunc.Result
	if len(referenced) > 0 {
		var err error
		results, err = functions.CallAll(ctx, referenced, params)
		if err != nil {
			return classify(err)
		}
	}

	store, err := sqlstore.Open(ctx, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		if err := store.Load(ctx, res); err != nil {
			return err
		}
	}

	res, err := store.Query(ctx, query)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	return render.Write(stdout, format, []*tablefunc.Result{res})
}

// listFunctions describes the registered tables as a table of its own.
func listFunctions(functions *tablefunc.Registry) *tablefunc.Result {
	type entry struct {
		Name        string   `json:"name" yaml:"name"`
		Parameters  string   `json:"parameters" yaml:"parameters"`
		Description string   `json:"description" yaml:"description"`
		Columns     []string `json:"columns" yaml:"columns"`
	}

	res := &tablefunc.Result{
		Function: "tables",
		Columns: []tablefunc.Column{
			{Name: "name", Type: tablefunc.Text},
			{Name: "parameters", Type: tablefunc.Text},
			{Name: "description", Type: tablefunc.Text},
		},
	}
	var entries []entry
	for _, fn := range functions.Functions() {
		params := ""
		if fn.AcceptsUnit {
			params = tablefunc.UnitParam
		}
		e := entry{Name: fn.Name, Parameters: params, Description: fn.Description}
		for _, c := range fn.Columns {
			e.Columns = append(e.Columns, c.Name)
		}
		entries = append(entries, e)
		res.Rows = append(res.Rows, []interface{}{e.Name, e.Parameters, e.Description})
	}
	res.Records = entries
	return res
}

// classify maps caller mistakes to exit code 2.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, tablefunc.ErrInvalidInput) || errors.Is(err, tablefunc.ErrUnknownFunction) {
		return &exitError{code: 2, err: err}
	}
	return err
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable output to stderr, keeping stdout for table data,
// and optionally a JSON log file.
func initLogger(cfg *config.Config, stderr io.Writer) *zap.Logger {
	var level zapcore.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
