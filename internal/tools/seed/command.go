package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/bazar-universal-api/internal/clock"
	"github.com/sandeepkv93/bazar-universal-api/internal/database"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/tools/common"
	"github.com/sandeepkv93/bazar-universal-api/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Sample catalog seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newStatusCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Create tables and load the sample catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "apply", func(ctx context.Context) ([]string, error) {
				return withDB(opts.envFile, func(db *gorm.DB) ([]string, error) {
					if err := database.Migrate(db); err != nil {
						return nil, err
					}
					report, err := database.SeedCatalog(ctx, db, clock.NewRealClock())
					if err != nil {
						return nil, err
					}
					return applyDetails(report), nil
				})
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				return withDB(opts.envFile, func(db *gorm.DB) ([]string, error) {
					tables := database.MigrationStatus(db)
					if !tables["products"] {
						products, err := database.SampleProducts()
						if err != nil {
							return nil, err
						}
						return []string{
							"would create tables: products, sales",
							fmt.Sprintf("would insert %d sample products", len(products)),
							"would insert 3 sample sales",
							"no mutation executed in dry-run mode",
						}, nil
					}
					plan, err := database.PlanSeed(ctx, db)
					if err != nil {
						return nil, err
					}
					return dryRunDetails(plan), nil
				})
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report catalog row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "status", func(ctx context.Context) ([]string, error) {
				return withDB(opts.envFile, func(db *gorm.DB) ([]string, error) {
					tables := database.MigrationStatus(db)
					if !tables["products"] || !tables["sales"] {
						return []string{"schema: not migrated"}, nil
					}
					products, err := repository.NewProductRepository(db, nil).Count(ctx)
					if err != nil {
						return nil, err
					}
					sales := repository.NewSaleRepository(db, nil)
					saleCount, err := sales.Count(ctx)
					if err != nil {
						return nil, err
					}
					amount, err := sales.TotalAmount(ctx)
					if err != nil {
						return nil, err
					}
					return []string{
						"schema: migrated",
						fmt.Sprintf("products=%d", products),
						fmt.Sprintf("sales=%d", saleCount),
						fmt.Sprintf("total_amount=%.2f", amount),
					}, nil
				})
			})
		},
	}
}

func applyDetails(report *database.SeedReport) []string {
	if report.Noop {
		return []string{fmt.Sprintf("catalog already has %d products; nothing seeded", report.ExistingProducts)}
	}
	return []string{
		fmt.Sprintf("created products=%d", report.CreatedProducts),
		fmt.Sprintf("created sales=%d", report.CreatedSales),
	}
}

func dryRunDetails(plan *database.SeedReport) []string {
	if plan.Noop {
		return []string{fmt.Sprintf("catalog already has %d products; apply would be a no-op", plan.ExistingProducts)}
	}
	return []string{
		fmt.Sprintf("would insert %d sample products", plan.CreatedProducts),
		fmt.Sprintf("would insert %d sample sales", plan.CreatedSales),
		"no mutation executed in dry-run mode",
	}
}

func execute(opts *options, command string, fn func(context.Context) ([]string, error)) error {
	start := time.Now()
	details, err := run(opts, "seed "+command, fn)
	common.ReportCommand("seed", command, start, opts.ci, details, err)
	if err != nil {
		os.Exit(3)
	}
	return nil
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

func withDB(envFile string, fn func(*gorm.DB) ([]string, error)) ([]string, error) {
	db, err := common.OpenDatabase(envFile)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	return fn(db)
}
