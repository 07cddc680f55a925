package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"goalTracker/internal/app"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/worker"

	"github.com/spf13/cobra"
)

type TimerOptions struct {
	*RootOptions
	For     time.Duration
	Refresh time.Duration
}

type timerResult struct {
	GoalID        string  `json:"goalId"`
	Title         string  `json:"title"`
	TimeSpent     float64 `json:"timeSpent"`
	TimeFormatted string  `json:"timeFormatted"`
}

// NewTimerCommand держит таймер в текущем процессе, пока не придёт Ctrl-C
// или не истечёт --for; время сохраняется при выходе
func NewTimerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timer <id>",
		Short: "Запустить таймер фокуса для цели",
		Example: `  goalctl timer 3f2a
  goalctl timer 3f2a --for 25m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				return runTimer(cmd, opts, e, args[0])
			})
		},
	}

	cmd.Flags().DurationVar(&opts.For, "for", 0, "остановить таймер через указанное время")
	cmd.Flags().DurationVar(&opts.Refresh, "refresh", time.Second, "как часто печатать время")
	return cmd
}

func runTimer(cmd *cobra.Command, opts *TimerOptions, e *app.Engine, arg string) error {
	svc := e.Service
	id, err := resolveID(svc.Goals(), arg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.For)
		defer cancel()
	}

	if err := svc.StartTimer(ctx, id); err != nil {
		return err
	}
	target, err := svc.GetGoal(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	text := opts.Format != "json"
	if text {
		fmt.Fprintf(out, "Таймер запущен: %s (Ctrl-C для остановки)\n", target.Title)
		refresh := opts.Refresh
		worker.NewTickWorker(&refresh, func() {
			if spent, err := svc.TimeSpent(id); err == nil {
				fmt.Fprintf(out, "\r%s", goal.FormatDuration(spent))
			}
		}).Start(ctx)
		fmt.Fprintln(out)
	} else {
		<-ctx.Done()
	}

	if err := svc.StopTimer(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	spent, err := svc.TimeSpent(id)
	if err != nil {
		return err
	}

	res := timerResult{
		GoalID:        id.String(),
		Title:         target.Title,
		TimeSpent:     spent,
		TimeFormatted: goal.FormatDuration(spent),
	}
	return newFormatter(opts.RootOptions, out).Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "Таймер остановлен: %s, всего %s\n", res.Title, res.TimeFormatted)
	})
}
