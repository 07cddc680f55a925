package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"goalTracker/internal/app"
	"goalTracker/internal/config"
	"goalTracker/internal/logger"

	"github.com/spf13/cobra"
)

// RootOptions - глобальные флаги всех команд
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Format     string // "text" | "json"
	Verbose    bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute запускает CLI и возвращает код выхода; ошибка печатается в errOut
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		if !slices.Contains(ValidFormats, opts.Format) {
			opts.Format = "text"
		}
		newFormatter(opts, errOut).Failure(err)
	}
	return GetExitCode(err)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goalctl",
		Short: "goalctl - цели, таймер фокуса и серия",
		Long:  "Управление целями из терминала: добавление, таймер фокуса, завершение и серия дней.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitUsage, fmt.Sprintf("неверный формат %q: допустимы %v", opts.Format, ValidFormats))
			}
			if opts.Verbose {
				if err := logger.Init(true); err != nil {
					return err
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "путь к config.yml")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "каталог с данными (перекрывает конфиг)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "формат вывода (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "писать логи в stderr")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDoneCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewCompletedCommand(opts))
	cmd.AddCommand(NewStreakCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewTimerCommand(opts))

	return cmd
}

// openEngine собирает движок с синхронной записью: процесс CLI живёт недолго
func openEngine(ctx context.Context, opts *RootOptions) (*app.Engine, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitUsage, "конфигурация", err)
	}
	if opts.DataDir != "" {
		cfg.Repository.DataDir = opts.DataDir
	}
	cfg.Persistence.Async = false

	engine, err := app.NewEngine(ctx, cfg)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "не удалось открыть хранилище", err)
	}
	return engine, nil
}

// withEngine открывает движок, выполняет fn и закрывает движок с сохранением
func withEngine(cmd *cobra.Command, opts *RootOptions, fn func(*app.Engine) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = WrapExitError(ExitFailure, "не удалось сохранить состояние", closeErr)
		}
	}()
	return fn(engine)
}
