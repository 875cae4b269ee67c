// Package main 是端点框架网关服务的入口点。
// 网关服务负责接收 HTTP 请求，经由执行上下文归一化、会话校验、
// 端点执行和响应组装的完整生命周期后返回统一信封。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oriys/strato/internal/api"
	"github.com/oriys/strato/internal/config"
	"github.com/oriys/strato/internal/endpoint"
	"github.com/oriys/strato/internal/metrics"
	"github.com/oriys/strato/internal/response"
	"github.com/oriys/strato/internal/session"
	"github.com/oriys/strato/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// main 是网关服务的主函数。
// 它负责初始化所有依赖组件并启动 HTTP 服务器。
func main() {
	// 解析命令行参数，获取配置文件路径
	configPath := flag.String("config", "/etc/strato/config.yaml", "Path to config file")
	flag.Parse()

	// 设置日志记录器，默认使用 JSON 格式便于日志收集和分析
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// 加载配置文件
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	// 根据配置设置日志级别和格式
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	logger.WithFields(logrus.Fields{
		"service": cfg.Service.Name,
		"version": cfg.Service.Version,
		"stage":   cfg.Service.Stage,
	}).Info("Starting Strato Gateway")

	// 初始化遥测系统 (OpenTelemetry)
	// 遥测初始化失败不影响主服务运行，仅记录警告
	if cfg.Telemetry.Enabled {
		tel, err := telemetry.New(context.Background(), telemetry.Config{
			Enabled:        cfg.Telemetry.Enabled,
			Endpoint:       cfg.Telemetry.Endpoint,
			ServiceName:    cfg.Service.Name,
			ServiceVersion: cfg.Service.Version,
			SampleRate:     cfg.Telemetry.SampleRate,
			Stage:          cfg.Service.Stage,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize telemetry, continuing without tracing")
		} else {
			defer tel.Shutdown(context.Background())
			// 将遥测钩子添加到日志记录器，自动关联日志和追踪
			logger.AddHook(telemetry.NewLogrusHook())
			logger.WithFields(logrus.Fields{
				"endpoint":    cfg.Telemetry.Endpoint,
				"sample_rate": cfg.Telemetry.SampleRate,
			}).Info("Telemetry initialized")
		}
	}

	// 初始化 Prometheus 指标收集器
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	// 初始化会话管理器，签名密钥显式注入
	sessions := session.NewManager(cfg.Auth.Secret, logger)

	// 创建端点注册表并注册凭证端点
	registry := endpoint.NewRegistry(endpoint.Config{
		Sessions: sessions,
		Service: response.ServiceInfo{
			Name:    cfg.Service.Name,
			Version: cfg.Service.Version,
		},
		Logger:  logger,
		Metrics: m,
	})
	if err := api.RegisterTokenEndpoints(registry, api.TokenEndpointsConfig{
		Sessions:                sessions,
		Metrics:                 m,
		AllowPrivilegedPersonas: cfg.Auth.AllowPrivilegedPersonas,
	}); err != nil {
		logger.WithError(err).Fatal("Failed to register token endpoints")
	}

	// 配置 HTTP 路由器
	router := api.NewRouter(&api.RouterConfig{
		Registry:    registry,
		Logger:      logger,
		ServiceName: cfg.Service.Name,
		Event: api.EventConfig{
			Stage:              cfg.Service.Stage,
			APIKeyHeader:       cfg.Auth.APIKeyHeader,
			SessionTokenHeader: cfg.Auth.SessionTokenHeader,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: router,
	}

	// 启动 HTTP 服务器
	go func() {
		logger.WithField("port", cfg.Server.HTTPPort).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// 等待终止信号，执行优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gateway")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
