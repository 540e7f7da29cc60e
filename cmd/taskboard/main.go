package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/taskboard/internal/adapters/server"
	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/evanschultz/taskboard/internal/adapters/storage/redisstore"
	"github.com/evanschultz/taskboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/client"
	"github.com/evanschultz/taskboard/internal/config"
	"github.com/evanschultz/taskboard/internal/platform"
	"github.com/evanschultz/taskboard/internal/tui"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveFunc starts the backend server; tests replace it to avoid binding sockets.
var serveFunc = server.Run

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// globalOptions holds flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

// newRootCommand builds the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("TASKBOARD_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TASKBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	var (
		serverURL string
		local     bool
	)
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "A three-column task board with drag-and-drop moves",
		Long: "taskboard opens a To Do / In Progress / Done board in the terminal.\n" +
			"It talks to a board server with --server, or runs the service in-process.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts, serverURL, local, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.Flags().StringVar(&serverURL, "server", "", "board API base url, for example http://127.0.0.1:8080/api")
	root.Flags().BoolVar(&local, "local", false, "run the board service in-process even when a server is configured")
	root.MarkFlagsMutuallyExclusive("server", "local")

	root.AddCommand(newServeCommand(opts, stderr), newPathsCommand(opts, stdout))
	return root
}

// newServeCommand builds the serve subcommand.
func newServeCommand(opts *globalOptions, stderr io.Writer) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board JSON API, MCP tools, and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, bind, stderr)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address, overrides server.http_bind")
	return cmd
}

// newPathsCommand builds the paths subcommand.
func newPathsCommand(opts *globalOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: opts.appName,
				DevMode: opts.devMode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "logs: %s\n", paths.LogDir)
			return nil
		},
	}
}

// runtimeEnv is the resolved configuration and logger for one command.
type runtimeEnv struct {
	cfg        config.Config
	configPath string
	paths      platform.Paths
	logger     *runtimeLogger
}

// resolveRuntime loads config and opens log sinks.
func resolveRuntime(opts *globalOptions, command string, stderr io.Writer) (runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimeEnv{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return runtimeEnv{cfg: cfg, configPath: configPath, paths: paths, logger: logger}, nil
}

// openService opens the configured store and builds the task service over it.
func openService(ctx context.Context, cfg config.Config, logger *runtimeLogger) (*app.Service, func(), error) {
	var (
		repo    app.Repository
		closeFn func() error
	)
	switch cfg.Backend() {
	case config.StorageRedis:
		logger.Info("opening redis repository", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		store, err := redisstore.Open(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Error("redis open failed", "addr", cfg.Redis.Addr, "err", err)
			return nil, nil, fmt.Errorf("open redis repository: %w", err)
		}
		repo, closeFn = store, store.Close
	default:
		logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
		if err := config.EnsureConfigDir(cfg.Database.Path); err != nil {
			return nil, nil, fmt.Errorf("create database dir: %w", err)
		}
		store, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		repo, closeFn = store, store.Close
	}
	logger.Info("repository ready", "backend", cfg.Backend())

	cleanup := func() {
		if err := closeFn(); err != nil {
			logger.Warn("repository close failed", "backend", cfg.Backend(), "err", err)
		}
	}
	return app.NewService(repo, uuid.NewString, time.Now), cleanup, nil
}

// runServe runs the backend server until the context is canceled.
func runServe(ctx context.Context, opts *globalOptions, bind string, stderr io.Writer) error {
	env, err := resolveRuntime(opts, "serve", stderr)
	if err != nil {
		return err
	}
	logger := env.logger
	defer closeLogger(logger, stderr)

	svc, cleanup, err := openService(ctx, env.cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	adapter := common.NewAppServiceAdapter(svc)
	serverCfg := server.Config{
		HTTPBind:      env.cfg.Server.HTTPBind,
		APIEndpoint:   env.cfg.Server.APIEndpoint,
		MCPEndpoint:   env.cfg.Server.MCPEndpoint,
		ServerName:    opts.appName,
		ServerVersion: version,
	}
	if bind = strings.TrimSpace(bind); bind != "" {
		serverCfg.HTTPBind = bind
	}
	logger.Info("command flow start", "command", "serve", "addr", serverCfg.HTTPBind)
	if err := serveFunc(ctx, serverCfg, server.Dependencies{
		Tasks:  adapter,
		Ready:  adapter,
		Logger: logger.Console(),
	}); err != nil {
		logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run server: %w", err)
	}
	logger.Info("command flow complete", "command", "serve")
	return nil
}

// runBoard opens the board TUI against a server or an in-process service.
func runBoard(ctx context.Context, opts *globalOptions, serverURL string, local bool, stderr io.Writer) error {
	env, err := resolveRuntime(opts, "tui", stderr)
	if err != nil {
		return err
	}
	logger := env.logger
	defer closeLogger(logger, stderr)

	api, cleanup, err := boardAPI(ctx, env.cfg, serverURL, local, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	m := tui.NewModel(
		api,
		tui.WithContext(ctx),
		tui.WithBoardTitle(env.cfg.UI.Title),
		tui.WithKeyConfig(toTUIKeyConfig(env.cfg.Keys)),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// boardAPI picks the HTTP client when a server url is known, otherwise an in-process service.
func boardAPI(ctx context.Context, cfg config.Config, serverURL string, local bool, logger *runtimeLogger) (board.API, func(), error) {
	baseURL := strings.TrimSpace(serverURL)
	if baseURL == "" && !local {
		baseURL = strings.TrimSpace(cfg.Client.BaseURL)
	}
	if baseURL != "" {
		httpClient, err := client.New(baseURL, client.WithTimeout(cfg.Client.Timeout.Std()))
		if err != nil {
			return nil, nil, fmt.Errorf("configure board client: %w", err)
		}
		logger.Info("using board server", "base_url", httpClient.BaseURL(), "timeout", cfg.Client.Timeout.Std())
		return httpClient, func() {}, nil
	}

	svc, cleanup, err := openService(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	localAPI, err := client.NewLocal(common.NewAppServiceAdapter(svc))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Info("using in-process board service", "backend", cfg.Backend())
	return localAPI, cleanup, nil
}

// closeLogger closes log sinks, reporting failures only when the console is live.
func closeLogger(logger *runtimeLogger, stderr io.Writer) {
	if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// toTUIKeyConfig maps persisted key overrides into model options.
func toTUIKeyConfig(keys config.KeyConfig) tui.KeyConfig {
	return tui.KeyConfig{
		PickUp:     keys.PickUp,
		NewTask:    keys.NewTask,
		DeleteTask: keys.DeleteTask,
		TaskInfo:   keys.TaskInfo,
		CopyID:     keys.CopyID,
		Reload:     keys.Reload,
	}
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
