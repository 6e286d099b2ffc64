package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"order-desk/internal/app"
	"order-desk/internal/services"
	"order-desk/internal/session"
	"order-desk/pkg/config"
	"order-desk/pkg/constants"
	applogger "order-desk/pkg/logger"
	"order-desk/pkg/utils"
)

// AppFactory собирает приложение для команды; release освобождает его ресурсы.
type AppFactory func(ctx context.Context) (a *app.App, release func(), err error)

// DefaultFactory читает конфигурацию из окружения и .env.
func DefaultFactory(ctx context.Context) (*app.App, func(), error) {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}

// NewRootCommand builds the root order-desk CLI command.
func NewRootCommand(factory AppFactory) *cobra.Command {
	if factory == nil {
		factory = DefaultFactory
	}
	root := &cobra.Command{
		Use:           "order-desk",
		Short:         "Шлюз экранов заказов типографии",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(factory))
	root.AddCommand(newOrdersCmd(factory))
	root.AddCommand(newBillCmd(factory))
	root.AddCommand(newSessionCmd(factory))

	return root
}

// Execute runs the order-desk CLI.
func Execute(ctx context.Context) error {
	if err := NewRootCommand(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newServeCmd(factory AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Запустить HTTP-шлюз",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, release, err := factory(ctx)
			if err != nil {
				return err
			}
			defer release()

			if err := a.Session.Watch(ctx); err != nil {
				a.Logger.Warn("Не удалось подписаться на изменения сессии", zap.Error(err))
			}

			e := a.Router()
			addr := ":" + a.Config.Gateway.Port
			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("🚀 Шлюз запущен", zap.String("addr", addr))
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("ошибка запуска сервера: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.Logger.Info("Остановка шлюза")
			return e.Shutdown(stopCtx)
		},
	}
}

func newOrdersCmd(factory AppFactory) *cobra.Command {
	var (
		screen    string
		search    string
		startDate string
		endDate   string
		page      int
	)
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Загрузить страницу экрана и вывести её в JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			list, err := a.Screens.Get(screen)
			if err != nil {
				return err
			}
			if _, err := list.Apply(cmd.Context(), search, startDate, endDate, page); err != nil {
				return err
			}
			return writeJSON(cmd, services.ListView(list.Snapshot()))
		},
	}
	cmd.Flags().StringVar(&screen, "screen", services.ScreenReception, "Экран: "+strings.Join(services.ScreenNames(services.DefaultScreens(0)), ", "))
	cmd.Flags().StringVar(&search, "search", "", "Строка поиска")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Дата начала (джалали, ГГГГ/ММ/ДД)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "Дата окончания (джалали, ГГГГ/ММ/ДД)")
	cmd.Flags().IntVar(&page, "page", 1, "Номер страницы")
	return cmd
}

func newBillCmd(factory AppFactory) *cobra.Command {
	var (
		ids string
		out string
	)
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Собрать счёт по заказам",
		RunE: func(cmd *cobra.Command, args []string) error {
			orderIDs, err := utils.ParseIDList(ids)
			if err != nil {
				return err
			}

			a, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			bill, err := a.Bills.Compose(cmd.Context(), orderIDs)
			if err != nil {
				return err
			}
			if out == "" {
				return writeJSON(cmd, bill)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("не удалось создать файл %s: %w", out, err)
			}
			defer f.Close()
			if err := services.WriteBillXLSX(f, bill); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "счёт сохранён в %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "ID заказов через запятую")
	cmd.Flags().StringVar(&out, "out", "", "Путь к xlsx; без него счёт печатается в JSON")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func newSessionCmd(factory AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Управление сохранённой сессией",
	}

	var (
		access  string
		refresh string
		role    int
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Сохранить токены и роль после входа",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := a.Session.Save(cmd.Context(), session.Credential{
				AccessToken:  access,
				RefreshToken: refresh,
				Role:         constants.Role(role),
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "сессия сохранена")
			return nil
		},
	}
	setCmd.Flags().StringVar(&access, "access", "", "Токен доступа")
	setCmd.Flags().StringVar(&refresh, "refresh", "", "Токен обновления")
	setCmd.Flags().IntVar(&role, "role", int(constants.RoleReception), "Код роли")
	_ = setCmd.MarkFlagRequired("access")
	_ = setCmd.MarkFlagRequired("refresh")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Удалить сохранённую сессию",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := a.Session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "сессия удалена")
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Показать роль и состояние токена",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			role, err := a.Session.Role(cmd.Context())
			if err != nil {
				return err
			}
			state := "действует"
			if _, err := a.Session.GetValidToken(cmd.Context()); err != nil {
				state = err.Error()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "роль: %d\nтокен: %s\n", int(role), state)
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd, showCmd)
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
