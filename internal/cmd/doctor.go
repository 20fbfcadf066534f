package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/health"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, API reachability and session",
	Long: `Run health checks against the local setup:

  • config      the effective configuration validates
  • admin-api   the API base URL answers HTTP requests
  • session     a session exists and is not about to expire
  • image-host  icon uploads are configured
  • home        the state directory is writable

Degraded checks are reported but do not fail the command. Any unhealthy
check makes doctor exit non-zero.`,
	RunE: runDoctor,
}

var doctorTimeout time.Duration

func init() {
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 5*time.Second, "timeout per check")

	rootCmd.AddCommand(doctorCmd)
}

type doctorReport struct {
	Overall health.Status   `json:"overall" yaml:"overall"`
	Checks  []health.Report `json:"checks" yaml:"checks"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	// Validation is one of the checks, so an invalid config still runs.
	cfg, err := cc.LoadConfig()
	if err != nil {
		return err
	}

	manager := health.NewManager().WithTimeout(doctorTimeout)
	manager.AddChecker(health.NewConfigChecker(cfg))
	manager.AddChecker(health.NewAPIChecker(cfg.API.BaseURL, &http.Client{Timeout: doctorTimeout}))
	manager.AddChecker(health.NewSessionChecker(session.NewFileStore(cfg.SessionPath())))
	manager.AddChecker(health.NewUploadChecker(cfg.UploadTarget()))
	manager.AddChecker(health.NewHomeChecker(cfg.Home))

	reports := manager.Check(cmd.Context())
	overall := health.OverallStatus(reports)

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{r.Name, r.Status.String(), r.Message, r.Latency.Round(time.Millisecond).String()})
	}
	tbl := ux.Table{
		Headers: []string{"Check", "Status", "Message", "Latency"},
		Rows:    rows,
		Footer:  []string{"Overall: " + overall.String()},
		Data:    doctorReport{Overall: overall, Checks: reports},
	}
	if err := printFormatted(cmd.OutOrStdout(), cc, tbl); err != nil {
		return err
	}

	if overall == health.StatusUnhealthy {
		failed := 0
		for _, r := range reports {
			if r.Status == health.StatusUnhealthy {
				failed++
			}
		}
		return fmt.Errorf("%d of %d checks failed", failed, len(reports))
	}
	return nil
}
