package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				err := os.Chdir(runEnv.dir)
				if err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			config, err := ensureConfig(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config file error", zap.Error(err))
				return
			}
			runEnv.config = config

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			// mu guards s, which the config watcher replaces on reload
			var mu sync.Mutex
			current := func() *Server {
				mu.Lock()
				defer mu.Unlock()
				return s
			}

			w := watcher.New()

			// Set MaxEvents to 1 to receive at most 1 event in each listening cycle
			// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
			w.SetMaxEvents(1)

			// Only notify write events.
			// 只通知写入事件。
			w.FilterOps(watcher.Write)

			go func() {
				for {
					select {
					case event := <-w.Event:
						old := current()
						old.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))

						// 先释放端口和数据库，再按新配置启动
						old.sc.SendCloseSignal(nil)
						if err := old.sc.WaitClosed(); err != nil {
							old.logger.Error("shutdown before reload failed", zap.Error(err))
						}

						next, err := NewServer(runEnv)
						if err != nil {
							bootstrapLogger.Error("service start err", zap.Error(err))
							continue
						}
						mu.Lock()
						s = next
						mu.Unlock()

					case err := <-w.Error:
						current().logger.Error("config watcher error", zap.Error(err))
					case <-w.Closed:
						bootstrapLogger.Info("config watcher closed")
						return
					}
				}
			}()

			// Watch config.yaml file
			// 监听 config.yaml 文件
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}

			go func() {
				if err := w.Start(time.Second * 5); err != nil {
					current().logger.Error("config watcher start error", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			w.Close()

			last := current()
			last.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			last.sc.SendCloseSignal(nil)

			// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := last.sc.WaitClosed(); err != nil {
				last.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				last.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
