package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chunkscribe/internal/config"
	"chunkscribe/internal/deps"
	"chunkscribe/internal/notifications"
	"chunkscribe/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report external tool and directory readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)

			rows := make([][]string, 0, len(statuses)+len(checks))
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, s.Command, readinessLabel(s.Available, s.Optional), dependencyDetail(s)})
			}
			if notify {
				checks = append(checks, notificationCheck(cmd, cfg))
			}
			for _, r := range checks {
				rows = append(rows, []string{r.Name, "", readinessLabel(r.Passed, false), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Command", "Status", "Detail"}, rows))

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(checks)
			if len(missing) == 0 && len(failed) == 0 {
				fmt.Fprintln(out, renderStatusLine("Summary", statusOK, "ready", colorize))
				return nil
			}
			names := make([]string, 0, len(missing)+len(failed))
			for _, m := range missing {
				names = append(names, m.Name)
			}
			for _, f := range failed {
				names = append(names, f.Name)
			}
			fmt.Fprintln(out, renderStatusLine("Summary", statusError, "not ready: "+strings.Join(names, ", "), colorize))
			return errors.New("readiness checks failed")
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a test notification to the configured ntfy topic")
	return cmd
}

func notificationCheck(cmd *cobra.Command, cfg *config.Config) preflight.Result {
	result := preflight.Result{Name: "Notifications"}
	svc := notifications.NewService(cfg.Notifications)
	if !notifications.Enabled(svc) {
		result.Detail = "notifications.ntfy_topic not set"
		return result
	}
	if err := svc.TestNotification(cmd.Context()); err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Passed = true
	result.Detail = "test notification sent to " + cfg.Notifications.NtfyTopic
	return result
}

func readinessLabel(ok, optional bool) string {
	return statusKindLabel(colorKind(ok, optional))
}

func dependencyDetail(s deps.Status) string {
	if s.Available {
		return s.Detail
	}
	if len(s.Install) == 0 {
		return s.Detail
	}
	return fmt.Sprintf("%s; install: %s", s.Detail, strings.Join(s.Install, " | "))
}
