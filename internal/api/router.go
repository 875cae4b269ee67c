// Package api 提供了端点框架的 HTTP 传输适配层。
// 本文件负责配置 HTTP 路由器和中间件，把注册表中的端点
// 挂载为 HTTP 路由，并暴露健康检查和指标端点。
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oriys/strato/internal/endpoint"
	"github.com/oriys/strato/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterConfig 路由器配置选项
type RouterConfig struct {
	// Registry 是已完成注册的端点注册表
	Registry *endpoint.Registry
	// Logger 日志记录器
	Logger *logrus.Logger
	// ServiceName 服务名称，用于追踪标识
	ServiceName string
	// Event 是事件提取的传输层约定
	Event EventConfig
	// RequestTimeout 请求超时时间，0 表示使用默认值 60 秒
	RequestTimeout time.Duration
}

// NewRouter 创建并配置 HTTP 路由器。
//
// 功能说明：
//   - 创建 chi 路由器实例并配置全局中间件
//   - 注册健康检查和指标端点
//   - 将注册表中的每个端点按其方法和路径挂载为 HTTP 路由
//
// 参数：
//   - cfg: 路由器配置
//
// 返回值：
//   - *chi.Mux: 配置完成的路由器实例
//
// 路由结构：
//
//	/health              - 基本健康检查
//	/health/ready        - Kubernetes 就绪探针
//	/health/live         - Kubernetes 存活探针
//	/metrics             - Prometheus 指标端点
//	<端点路由>            - 注册表中声明的全部端点
func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// 中间件按添加顺序执行，形成洋葱模型

	// 遥测中间件：记录 HTTP 请求的追踪信息
	r.Use(telemetry.HTTPMiddleware(cfg.ServiceName))

	// RequestID 中间件：为每个请求生成传输层请求 ID，便于日志追踪
	r.Use(middleware.RequestID)

	// RealIP 中间件：从 X-Forwarded-For 等头部获取真实客户端 IP
	r.Use(middleware.RealIP)

	// Recoverer 中间件：捕获 panic 并返回 500 错误，防止服务崩溃
	r.Use(middleware.Recoverer)

	// Timeout 中间件：限制单个请求的处理时长
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	// CORS 中间件：处理跨域请求
	r.Use(corsMiddleware)

	// 访问日志中间件：按结构化字段记录每个请求的结果
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	// 健康检查端点 - 用于负载均衡器和 Kubernetes 探针
	r.Get("/health", healthHandler)
	r.Get("/health/ready", healthHandler)
	r.Get("/health/live", healthHandler)

	// Prometheus 指标端点 - 暴露应用程序指标供监控系统采集
	r.Handle("/metrics", promhttp.Handler())

	// 挂载注册表中的全部端点
	for _, ep := range cfg.Registry.Endpoints() {
		r.Method(ep.Definition().Method, ep.Definition().Path, endpointHandler(ep, cfg.Event))
	}

	return r
}

// endpointHandler 将一个端点实例包装为 http.Handler。
// 每次请求：提取调用事件 → 执行生命周期 → 写回响应。
func endpointHandler(ep *endpoint.Endpoint, eventCfg EventConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ev := EventFromRequest(r, eventCfg)
		resp := ep.Execute(r.Context(), ev)
		WriteResponse(w, resp)
	})
}

// healthHandler 处理健康检查请求。
// 框架核心不持有外部连接，进程存活即视为健康。
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// requestLogger 返回结构化访问日志中间件。
// 每个请求完成后记录方法、路径、状态码和耗时。
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(started).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			}).Debug("http request completed")
		})
	}
}

// corsMiddleware 处理跨域请求。
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 允许所有来源访问（生产环境建议设置为特定域名）
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// 允许的 HTTP 方法
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// 允许的请求头
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Session-Token, X-Correlation-Id")

		// 处理预检请求（OPTIONS 方法）
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
