package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/internal/dycast"
	"github.com/hanxiao1024/dycast/internal/live"
	"github.com/hanxiao1024/dycast/internal/relay"
	"github.com/hanxiao1024/dycast/internal/sink"
	"github.com/hanxiao1024/dycast/internal/store"
	"github.com/hanxiao1024/dycast/internal/watcher"
	"github.com/hanxiao1024/dycast/pkg/config"
	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "configs/dycast.yaml", "config file path")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("load config failed: " + err.Error())
	}

	// 初始化日志
	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		panic("init logger failed: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("starting dycast",
		zap.String("config", *configPath),
		zap.Strings("rooms", cfg.Rooms),
	)

	// 指标服务
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// 游标快照
	var cursorStore dycast.CursorStore
	if cfg.Store.Path != "" {
		fs, err := store.OpenFileCursorStore(cfg.Store.Path)
		if err != nil {
			logger.Fatal("open cursor store failed",
				zap.String("path", cfg.Store.Path),
				zap.Error(err),
			)
		}
		cursorStore = fs
	}

	// 签名服务
	var signer live.Signer
	if cfg.Signer.Endpoint != "" {
		signer = live.NewHTTPSigner(cfg.Signer.Endpoint)
	}

	// 弹幕转发
	var relayServer *relay.Server
	if cfg.Relay.Enabled {
		relayServer = relay.NewServer(cfg.Relay.Addr, cfg.Relay.SendQueueSize)
		go func() {
			if err := relayServer.Run(); err != nil {
				logger.Error("relay server error", zap.Error(err))
			}
		}()
	}

	// Kafka 落地
	var kafkaSink *sink.KafkaSink
	if cfg.Kafka.Enabled {
		kafkaSink = sink.NewKafkaSink(&sink.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer kafkaSink.Close()
	}

	manager := watcher.NewManager(func(roomNum string) *dycast.DyCast {
		return dycast.New(roomNum, dycast.Config{
			BaseURL:           cfg.Cast.BaseURL,
			HeartbeatInterval: cfg.Cast.HeartbeatInterval,
			Hooks: dycast.HookConfig{
				OnLiveStart: cfg.Hooks.OnLiveStart,
				OnLiveEnd:   cfg.Hooks.OnLiveEnd,
			},
			Fetcher: live.NewHTTPFetcher(cfg.Cast.APIBase),
			Signer:  signer,
			Store:   cursorStore,
		})
	})

	// 弹幕批次分发到转发服务和 Kafka
	manager.OnEvent(func(ev dycast.Event) {
		if ev.Type != dycast.EventMessage || len(ev.Messages) == 0 {
			return
		}
		if relayServer != nil {
			relayServer.Broadcast(ev.Messages)
		}
		if kafkaSink != nil {
			kafkaSink.Publish(context.Background(), ev.RoomNum, ev.Messages)
		}
	})

	roomWatcher := watcher.NewRoomWatcher(manager, cfg.Watcher)
	if relayServer != nil {
		relayServer.SetRoomsFunc(roomWatcher.Rooms)
	}
	for _, room := range cfg.Rooms {
		roomWatcher.AddRoom(room)
	}

	// 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	roomWatcher.Stop()
	if relayServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		relayServer.Shutdown(ctx)
	}
}
