package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"reader-hub/cmd"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/wire"
	"reader-hub/pkg/database"
	"reader-hub/pkg/i18n"
	"reader-hub/pkg/mailer"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

const usage = `usage: reader-hub [serve | migrate up|down | seed]`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	os.Exit(run(flag.Args()))
}

// run executes one subcommand and returns the process exit code. Deferred
// cleanups and the logger flush happen before main exits.
func run(args []string) int {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()

	command, direction := "serve", ""
	if len(args) > 0 {
		command = args[0]
	}
	if len(args) > 1 {
		direction = args[1]
	}

	switch command {
	case "serve":
		err = serve(config, logger)
	case "migrate":
		err = migrate(config, direction, logger)
	case "seed":
		err = seed(config, logger)
	default:
		flag.Usage()
		return 2
	}

	if err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func serve(config *utils.Config, logger *zap.Logger) error {
	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	repos, closeStore, err := openRepository(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	locales, err := i18n.NewManager(config.App.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	sender, err := mailer.New(config.Email, config.OTP, logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:    repos,
		Mailer:  sender,
		Locales: locales,
		Config:  config,
		Logger:  logger,
	})

	return cmd.APIServer(app.Router, config.App.Port, logger)
}

func migrate(config *utils.Config, direction string, logger *zap.Logger) error {
	if config.Database.Driver == utils.DriverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		mongo, err := database.InitMongo(ctx, config.Database)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer mongo.Close(context.Background())
		return repository.EnsureMongoSchema(ctx, mongo.DB, logger)
	}

	if direction == "" {
		direction = database.MigrateUp
	}
	if err := database.Migrate(config.Database.DSN(), direction); err != nil {
		return err
	}
	logger.Info("Migrations applied", zap.String("direction", direction))
	return nil
}

func seed(config *utils.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, closeStore, err := openRepository(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return cmd.SeedAdmin(ctx, repos.User, config, logger)
}

// openRepository connects the configured store plus redis and returns a
// cleanup func.
func openRepository(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func(), error) {
	rdb := database.NewRedis(ctx, config.Redis, logger)
	resetTokens := repository.NewResetTokenRepository(rdb.Client, logger)

	switch config.Database.Driver {
	case utils.DriverMongo:
		mongo, err := database.InitMongo(ctx, config.Database)
		if err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := repository.EnsureMongoSchema(ctx, mongo.DB, logger); err != nil {
			logger.Warn("Failed to ensure mongo schema", zap.Error(err))
		}
		logger.Info("MongoDB connected successfully", zap.String("database", config.Database.MongoDB))

		cleanup := func() {
			_ = mongo.Close(context.Background())
			rdb.Close()
		}
		return repository.NewMongoRepository(mongo.DB, mongo, resetTokens, logger), cleanup, nil

	default:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Info("Database connected successfully")

		cleanup := func() {
			db.Close()
			rdb.Close()
		}
		return repository.NewRepository(db, resetTokens, logger), cleanup, nil
	}
}
