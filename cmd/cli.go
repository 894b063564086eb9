package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	internalApp "github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/upgrade"
	"github.com/dontknow492/Notes/pkg/logger"
	"github.com/dontknow492/Notes/pkg/timex"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cliOptions note/tag 子命令共享参数
type cliOptions struct {
	config string
	json   bool
}

func (o *cliOptions) bind(c *cobra.Command) {
	c.PersistentFlags().StringVarP(&o.config, "config", "c", "", "config file")
	c.PersistentFlags().BoolVar(&o.json, "json", false, "print JSON")
}

// openApp 按配置打开数据库并构建应用容器，返回的 cleanup 负责关闭
func openApp(configPath string) (*internalApp.App, func(), error) {
	path := findConfig(configPath)
	if path == "" {
		return nil, nil, errors.New("config file not found, run `notes run` once or pass -c")
	}
	cfg, _, err := internalApp.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	cfg.Maintenance.Enabled = false

	lg, err := logger.NewLogger(cfg.GetLoggerConfig())
	if err != nil {
		return nil, nil, errors.Wrap(err, "init logger")
	}
	db, err := dao.NewDBEngine(cfg.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "init database")
	}
	if err := upgrade.Execute(context.Background(), db, lg); err != nil {
		return nil, nil, errors.Wrap(err, "upgrade database")
	}
	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()
		_ = a.Shutdown(ctx)
		_ = a.Close()
		_ = lg.Sync()
	}
	return a, cleanup, nil
}

// withApp 为子命令打开应用容器
func withApp(opts *cliOptions, fn func(ctx context.Context, a *internalApp.App, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := openApp(opts.config)
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd.Context(), a, cmd.OutOrStdout())
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printJSON(out io.Writer, v interface{}) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}

func formatMillis(ms int64) string {
	return timex.FromMillis(ms).String()
}
