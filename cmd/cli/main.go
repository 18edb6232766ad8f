package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/cmd/cli/commands"
	"github.com/jakechorley/cooking-rota/internal/config"
	"github.com/jakechorley/cooking-rota/pkg/core/services"
	"github.com/jakechorley/cooking-rota/pkg/lock"
	"github.com/jakechorley/cooking-rota/pkg/postgres"
	"github.com/jakechorley/cooking-rota/pkg/utils/logging"
)

var (
	env    string
	logDir string
	app    = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Cooking Rota CLI - Plan the kita cooking duties",
		Long:  `A CLI tool for planning which family cooks on which day of the kita year, fairly and with even spacing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for JSON log files")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.CreateYearCmd(app))
	rootCmd.AddCommand(commands.ActivateYearCmd(app))
	rootCmd.AddCommand(commands.GenerateHolidaysCmd(app))
	rootCmd.AddCommand(commands.AddVacationCmd(app))
	rootCmd.AddCommand(commands.RegisterFamilyCmd(app))
	rootCmd.AddCommand(commands.SetAvailabilityCmd(app))
	rootCmd.AddCommand(commands.GeneratePlanCmd(app))
	rootCmd.AddCommand(commands.ViewPlanCmd(app))
	rootCmd.AddCommand(commands.DeletePlanCmd(app))
	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.AddFamilyCmd(app))
	rootCmd.AddCommand(commands.RemoveFamilyCmd(app))
	rootCmd.AddCommand(commands.CarryOverCmd(app))
	rootCmd.AddCommand(commands.PublishPlanCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))

	if err := rootCmd.Execute(); err != nil {
		closeApp()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and the plan lock
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	for _, p := range []string{".env." + env, ".env"} {
		_ = godotenv.Load(p)
	}

	app.Logger, err = logging.InitLogger(env, logDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	location, err := app.Cfg.Location()
	if err != nil {
		return err
	}
	app.Settings = services.Settings{
		Closures: app.Cfg.ClosureSource(),
		Location: location,
	}

	app.Logger.Debug("Connecting to database")
	app.Database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.Database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Logger.Debug("Database initialized successfully")

	if app.Cfg.Redis.Addr == "" {
		app.Logger.Debug("No redis configured, using in-process plan lock")
		app.Locker = lock.NewMemoryLocker()
		return nil
	}

	app.Redis = redis.NewClient(&redis.Options{
		Addr:     app.Cfg.Redis.Addr,
		Password: app.Cfg.Redis.Password,
		DB:       app.Cfg.Redis.DB,
	})
	redisLocker := lock.NewRedisLocker(app.Redis, app.Cfg.Redis.LockTTL)
	if err := redisLocker.Ping(app.Ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.Locker = redisLocker
	app.Logger.Debug("Redis plan lock initialized", zap.String("addr", app.Cfg.Redis.Addr))

	return nil
}

func closeApp() {
	if app.Redis != nil {
		_ = app.Redis.Close()
		app.Redis = nil
	}
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
