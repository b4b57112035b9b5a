package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/gaushala-dev/milk-delivery/backend/internal/config"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/repository"
	"github.com/gaushala-dev/milk-delivery/backend/internal/seed"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// app is opened once by the root command and shared with every subcommand.
type app struct {
	cfg    *config.Config
	dbpool *sql.DB
	seeder *seed.Seeder
	logger *slog.Logger
}

func main() {
	a := &app{logger: slog.New(slog.NewTextHandler(os.Stdout, nil))}
	slog.SetDefault(a.logger)

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		a.logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var noProgress bool

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Fill the delivery database with staff, clients and past deliveries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), noProgress)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.dbpool != nil {
				a.dbpool.Close()
			}
		},
	}
	root.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bars")

	root.AddCommand(
		newFixtureCmd(a),
		newStaffCmd(a),
		newClientsCmd(a),
		newSimulateCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, noProgress bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	a.dbpool = dbpool

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Migrate(pingCtx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	opts := []seed.Option{seed.WithLogger(a.logger)}
	if !noProgress {
		opts = append(opts, seed.WithProgress(func(total int, description string) seed.Progress {
			return progressbar.Default(int64(total), description)
		}))
	}
	a.seeder, err = seed.NewSeeder(repo, cfg.Seed.User.Password, cfg.Seed.EmailDomain, bcrypt.DefaultCost, opts...)
	return err
}

func newFixtureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fixture [file]",
		Short: "Load staff, clients, assignments and history from a YAML fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "./internal/seed/data/fixture.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			f, err := seed.LoadFixture(file)
			if err != nil {
				return err
			}
			_, err = a.seeder.ApplyFixture(cmd.Context(), f)
			return err
		},
	}
}

func newStaffCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Create random staff accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				return fmt.Errorf("--count must be positive, got %d", n)
			}
			_, err := a.seeder.RandomStaff(cmd.Context(), n)
			return err
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 5, "number of staff accounts")
	return cmd
}

func newClientsCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Create random clients and assign them to available staff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				return fmt.Errorf("--count must be positive, got %d", n)
			}
			_, err := a.seeder.RandomClients(cmd.Context(), n)
			return err
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 20, "number of clients")
	return cmd
}

func newSimulateCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write delivery records for the past days of every current assignment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			end := domain.Today(loc).AddDays(-1)
			_, err = a.seeder.Simulate(cmd.Context(), end.AddDays(1-days), end)
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "number of days ending yesterday")
	return cmd
}
