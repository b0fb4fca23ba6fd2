package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/gradeplan/internal/cli"
	"github.com/alexanderramin/gradeplan/internal/config"
	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/lock"
	"github.com/alexanderramin/gradeplan/internal/logger"
	"github.com/alexanderramin/gradeplan/internal/metrics"
	"github.com/alexanderramin/gradeplan/internal/repository"
	"github.com/alexanderramin/gradeplan/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions parses the flags that decide wiring. Everything else is
// left for cobra.
func globalOptions(args []string) cli.GlobalOptions {
	var opts cli.GlobalOptions
	fs := pflag.NewFlagSet("gradeplan", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	cli.BindGlobalFlags(fs, &opts)
	_ = fs.Parse(args)
	if opts.ConfigPath == "" {
		opts.ConfigPath = os.Getenv("GRADEPLAN_CONFIG")
	}
	return opts
}

func run() error {
	opts := globalOptions(os.Args[1:])

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	root, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	orderRepo := repository.NewSQLiteOrderRepo(database)
	employeeRepo := repository.NewSQLiteEmployeeRepo(database)
	planningRepo := repository.NewSQLitePlanningRepo(database)
	leaseRepo := repository.NewSQLiteLeaseRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// In-process runs are excluded by the mutex map, other processes
	// sharing the database by the lease table.
	locker := lock.Chain{
		lock.NewMutexMap(),
		lock.NewLeaseLocker(leaseRepo, cfg.Planning.LeaseTTL(), root.Component("lock")),
	}

	registry := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	observer := service.NewLogUseCaseObserver(root.Component("usecase"))

	app := &cli.App{
		Planning: service.NewPlanningService(orderRepo, employeeRepo, planningRepo, uow, locker,
			cfg.Planning, root.Component("planning"), sink, observer),
		Lifecycle: service.NewLifecycleService(uow, root.Component("lifecycle"), sink, observer),
		Query:     service.NewQueryService(planningRepo, employeeRepo),
		Seed:      service.NewSeedService(uow, root.Component("seed"), observer),
		Globals:   opts,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := cli.NewRootCmd(app).ExecuteContext(ctx)

	if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath, registry); err != nil {
		root.Warnf("writing metrics textfile: %v", err)
	}
	return runErr
}
