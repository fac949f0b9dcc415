package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/cron"
	"github.com/rshade/gitupdater/internal/messages"
)

func newCronCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cron", Short: "Scheduled refresh commands"}
	cmd.AddCommand(NewCronCheckCmd(), NewCronScheduleCmd(), NewCronUnscheduleCmd(), NewCronListCmd())
	return cmd
}

// NewCronCheckCmd creates the "cron check" command. It reports whether a hook
// is already scheduled and raises a message when that event is overdue.
func NewCronCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <hook>",
		Short: "Check whether a refresh hook is scheduled and on time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			sched, err := cron.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}

			checker := cron.NewChecker(a.messages)
			if checker.IsDuplicateEvent(cmd.Context(), sched.Events, args[0]) {
				cmd.Printf("%s is scheduled\n", args[0])
			} else {
				cmd.Printf("%s is not scheduled\n", args[0])
			}

			if msgs := a.messages.List(); len(msgs) > 0 {
				cmd.Println(messages.Render(msgs))
			}
			return nil
		},
	}
}

// NewCronScheduleCmd creates the "cron schedule" command.
func NewCronScheduleCmd() *cobra.Command {
	var (
		at string
		in time.Duration
	)

	cmd := &cobra.Command{
		Use:   "schedule <hook>",
		Short: "Schedule a refresh hook",
		Example: `  # Run the refresh in an hour
  gitupdater cron schedule ghu_get_remote_plugin --in 1h

  # Run the refresh at a fixed time
  gitupdater cron schedule ghu_get_remote_theme --at 2025-01-02T15:04:05Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ts := time.Now().Add(in)
			if at != "" {
				if ts, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parsing --at: %w", err)
				}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			sched, err := cron.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			sched.Add(args[0], ts.UTC())
			if err = sched.Save(cmd.Context(), a.store); err != nil {
				return err
			}
			cmd.Printf("Scheduled %s at %s\n", args[0], ts.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "RFC 3339 time to run at")
	cmd.Flags().DurationVar(&in, "in", 0, "delay from now")
	cmd.MarkFlagsMutuallyExclusive("at", "in")
	return cmd
}

// NewCronUnscheduleCmd creates the "cron unschedule" command.
func NewCronUnscheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule <hook>",
		Short: "Remove every scheduled event for a hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			sched, err := cron.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			n := sched.Remove(args[0])
			if err = sched.Save(cmd.Context(), a.store); err != nil {
				return err
			}
			cmd.Printf("Removed %d event(s) for %s\n", n, args[0])
			return nil
		},
	}
}

// NewCronListCmd creates the "cron list" command.
func NewCronListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled refresh events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			sched, err := cron.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			if len(sched.Events) == 0 {
				cmd.Println("No scheduled events.")
				return nil
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "Hook\tTimestamp")
			fmt.Fprintln(w, "----\t---------")
			for _, e := range sched.Events {
				fmt.Fprintf(w, "%s\t%s\n", e.Hook, e.Timestamp.UTC().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
