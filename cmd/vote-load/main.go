// Command vote-load drives a recipebox server with concurrent voting sessions
// and verifies that every rating count grew by exactly the accepted votes.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/recipebox/internal/loadtest"
	"github.com/okian/recipebox/pkg/logger"
)

// Default configuration constants.
const (
	defaultSessions = 200
	defaultVotes    = 5
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 10 * time.Second
	defaultDeadline = 10 * time.Minute
)

// errInconsistent is returned when verification finds a violation.
var errInconsistent = errors.New("vote aggregates are inconsistent")

var cfg loadtest.Config

var rootCmd = &cobra.Command{
	Use:   "vote-load",
	Short: "Cast concurrent votes against a recipebox server and verify the aggregates",
	Long: `vote-load opens many browse sessions, casts random 1-5 votes on random
recipes from each, repeats one vote per session to exercise the one-vote
rule, and then checks that each recipe's ratingCount moved by exactly the
number of accepted votes.

Run it against a server with rate limiting disabled
(RECIPEBOX_RATE_LIMIT_REQUESTS=0) or throttled votes will be reported.`,
	SilenceUsage: true,
	RunE:         runLoad,
}

func init() {
	rootCmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	rootCmd.Flags().IntVar(&cfg.Sessions, "sessions", defaultSessions, "Number of sessions to open")
	rootCmd.Flags().IntVar(&cfg.Votes, "votes", defaultVotes, "Distinct recipes each session votes on")
	rootCmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	rootCmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	rootCmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "Seed for the vote plan (0 picks one from the clock)")
	rootCmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "Log every vote")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(); err != nil {
		return err
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultDeadline)
	defer cancel()

	r, err := loadtest.NewRunner(cfg, logger.Named("vote-load"))
	if err != nil {
		return err
	}
	stats, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if !stats.OK() {
		return errInconsistent
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
