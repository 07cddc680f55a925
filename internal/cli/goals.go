package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"goalTracker/internal/app"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Добавить цель",
		Example: `  goalctl add "Прочитать главу" -p high
  goalctl add Зарядка`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := goal.ParsePriority(priority)
			if err != nil {
				return WrapExitError(ExitUsage, "приоритет", err)
			}
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				created, err := e.Service.AddGoal(cmd.Context(), strings.Join(args, " "), p)
				if err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(created, func(w io.Writer) {
					fmt.Fprintf(w, "Добавлена цель %s [%s] %s\n", shortID(created.ID), created.Priority, created.Title)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(goal.PriorityMedium), "приоритет (high|medium|low)")
	return cmd
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Активные цели по приоритету",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				goals := e.Service.Goals()
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(goals, func(w io.Writer) {
					printGoals(w, goals, "Активных целей нет")
				})
			})
		},
	}
}

func NewCompletedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "completed",
		Short: "Завершённые цели",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				goals := e.Service.Completed()
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(goals, func(w io.Writer) {
					printGoals(w, goals, "Завершённых целей нет")
				})
			})
		},
	}
}

// NewDoneCommand завершает активную цель; уже завершённую не трогает
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Завершить цель",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				id, err := resolveID(e.Service.Goals(), args[0])
				if err != nil {
					return err
				}
				if err := e.Service.ToggleComplete(cmd.Context(), id); err != nil {
					return err
				}
				return printGoalResult(cmd, rootOpts, e, id, "Цель завершена")
			})
		},
	}
}

func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Вернуть завершённую цель в список",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				id, err := resolveID(e.Service.Completed(), args[0])
				if err != nil {
					return err
				}
				if err := e.Service.RestoreGoal(cmd.Context(), id); err != nil {
					return err
				}
				return printGoalResult(cmd, rootOpts, e, id, "Цель возвращена")
			})
		},
	}
}

func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Удалить активную цель",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				id, err := resolveID(e.Service.Goals(), args[0])
				if err != nil {
					return err
				}
				if err := e.Service.DeleteGoal(cmd.Context(), id); err != nil {
					return err
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(map[string]string{"deleted": id.String()}, func(w io.Writer) {
					fmt.Fprintf(w, "Цель %s удалена\n", shortID(id))
				})
			})
		},
	}
}

func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Текущая серия дней",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				settings := e.Service.Settings()
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(settings, func(w io.Writer) {
					fmt.Fprintf(w, "Серия: %d\n", settings.Streak)
					if settings.LastCompletionDate != nil {
						fmt.Fprintf(w, "Последнее завершение: %s\n", settings.LastCompletionDate.Format("2006-01-02"))
					}
				})
			})
		},
	}
}

type statsOutput struct {
	service.Stats
	Weekly []service.DailyCount `json:"weekly"`
}

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Статистика и прогресс за неделю",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, rootOpts, func(e *app.Engine) error {
				out := statsOutput{Stats: e.Service.Stats(), Weekly: e.Service.WeeklyProgress()}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(out, func(w io.Writer) {
					fmt.Fprintf(w, "Активных: %d\n", out.ActiveGoals)
					fmt.Fprintf(w, "Завершено всего: %d, сегодня: %d\n", out.TotalCompleted, out.CompletedToday)
					fmt.Fprintf(w, "Серия: %d\n", out.CurrentStreak)
					fmt.Fprintf(w, "Время в фокусе: %s\n", goal.FormatDuration(out.TotalTimeSpent))
					for _, day := range out.Weekly {
						fmt.Fprintf(w, "  %s %s\n", day.Date.Format("Mon 02.01"), strings.Repeat("#", day.Count))
					}
				})
			})
		},
	}
}

func printGoalResult(cmd *cobra.Command, rootOpts *RootOptions, e *app.Engine, id uuid.UUID, message string) error {
	g, err := e.Service.GetGoal(id)
	if err != nil {
		return err
	}
	return newFormatter(rootOpts, cmd.OutOrStdout()).Success(g, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s %s\n", message, shortID(g.ID), g.Title)
	})
}

func printGoals(w io.Writer, goals []goal.Goal, empty string) {
	if len(goals) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tПРИОРИТЕТ\tВРЕМЯ\tШАГИ\tНАЗВАНИЕ")
	for _, g := range goals {
		done := 0
		for _, step := range g.Steps {
			if step.IsCompleted {
				done++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			shortID(g.ID), g.Priority, goal.FormatDuration(g.TimeSpent), done, len(g.Steps), g.Title)
	}
	tw.Flush()
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// resolveID ищет цель среди goals по полному uuid или однозначному префиксу
func resolveID(goals []goal.Goal, arg string) (uuid.UUID, error) {
	prefix := strings.ToLower(strings.TrimSpace(arg))
	if prefix == "" {
		return uuid.Nil, NewExitError(ExitUsage, "пустой id")
	}

	var found []uuid.UUID
	for _, g := range goals {
		if strings.HasPrefix(g.ID.String(), prefix) {
			found = append(found, g.ID)
		}
	}
	switch len(found) {
	case 0:
		return uuid.Nil, service.NewNotFound("цель", arg)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, NewExitError(ExitUsage, fmt.Sprintf("префикс %q подходит к %d целям", arg, len(found)))
	}
}
