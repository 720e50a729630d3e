package loadgen

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/bazar-universal-api/internal/tools/common"
	"github.com/sandeepkv93/bazar-universal-api/internal/tools/ui"
)

// catalogProfiles are the traffic mixes understood by requestsForProfile.
var catalogProfiles = []string{"browse", "mixed", "error-heavy"}

type options struct {
	baseURL     string
	apiPrefix   string
	profile     string
	duration    time.Duration
	rps         int
	concurrency int
	seed        int64
	ci          bool
}

// NewRootCommand builds the loadgen CLI, which replays catalog browsing and
// sale traffic against a running Bazar API.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Generate catalog traffic against a running API"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8000", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.apiPrefix, "api-prefix", "/api/v1", "API route prefix")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "mixed", "traffic profile: "+strings.Join(catalogProfiles, "|"))
	cmd.PersistentFlags().DurationVar(&opts.duration, "duration", 15*time.Second, "traffic duration")
	cmd.PersistentFlags().IntVar(&opts.rps, "rps", 20, "requests per second")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 6, "concurrent workers")
	cmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "random seed")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run load generation",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOptions(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			details, err := run(opts, "loadgen run", func(ctx context.Context) ([]string, error) {
				res, err := Run(ctx, Config{
					BaseURL:     opts.baseURL,
					APIPrefix:   opts.apiPrefix,
					Profile:     opts.profile,
					Duration:    opts.duration,
					RPS:         opts.rps,
					Concurrency: opts.concurrency,
					Seed:        opts.seed,
				})
				if err != nil {
					return nil, err
				}
				return summaryLines(res), nil
			})
			common.ReportCommand("loadgen", "run", start, opts.ci, details, err)
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func validateOptions(opts *options) error {
	if !slices.Contains(catalogProfiles, strings.ToLower(opts.profile)) {
		return fmt.Errorf("unknown profile %q (want %s)", opts.profile, strings.Join(catalogProfiles, ", "))
	}
	if opts.duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if opts.rps <= 0 || opts.concurrency <= 0 {
		return fmt.Errorf("rps and concurrency must be > 0")
	}
	return nil
}

// summaryLines renders a run for the TUI and the --ci JSON details. The
// error rate covers 5xx responses and transport failures; 4xx responses are
// expected from the error-heavy catalog profile.
func summaryLines(res Result) []string {
	attempts := res.TotalRequests + res.Failures
	errorRate := 0.0
	if attempts > 0 {
		errorRate = float64(res.Status5xx+res.Failures) / float64(attempts)
	}
	return []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
		fmt.Sprintf("error_rate=%.3f", errorRate),
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.duration+15*time.Second)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}
