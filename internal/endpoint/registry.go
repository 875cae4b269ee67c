// Package endpoint 实现了端点的编排逻辑。
// 本文件实现了端点注册表：集中持有共享依赖（会话管理器、服务标识、
// 日志、指标），按注册顺序维护端点列表，供传输层挂载到路由器。
package endpoint

import (
	"fmt"

	"github.com/oriys/strato/internal/metrics"
	"github.com/oriys/strato/internal/response"
	"github.com/oriys/strato/internal/session"
	"github.com/sirupsen/logrus"
)

// Config 汇集端点注册表的共享依赖。
type Config struct {
	// Sessions 是会话管理器（必需）
	Sessions *session.Manager
	// Service 是响应元数据中的服务标识
	Service response.ServiceInfo
	// Logger 是结构化日志记录器，可以为 nil
	Logger *logrus.Logger
	// Metrics 是指标收集器，可以为 nil
	Metrics *metrics.Metrics
}

// Registry 是端点注册表。
// 注册在服务启动阶段完成，请求处理期间注册表只读，
// 因此无需加锁即可被并发请求共享。
type Registry struct {
	cfg       Config
	endpoints []*Endpoint
	byOp      map[string]*Endpoint
}

// NewRegistry 创建并返回一个新的端点注册表。
//
// 参数:
//   - cfg: 共享依赖配置
//
// 返回:
//   - *Registry: 初始化后的注册表
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:  cfg,
		byOp: make(map[string]*Endpoint),
	}
}

// Register 注册一个端点定义并返回可执行的端点实例。
// 操作 ID 重复时返回错误，保证每个操作在注册表中唯一。
//
// 参数:
//   - def: 端点的静态定义
//
// 返回:
//   - *Endpoint: 绑定共享依赖后的端点实例
//   - error: 操作 ID 冲突或定义不完整时返回错误
func (r *Registry) Register(def Definition) (*Endpoint, error) {
	if def.OperationID == "" {
		return nil, fmt.Errorf("endpoint definition requires an operation id")
	}
	if def.Handler == nil {
		return nil, fmt.Errorf("endpoint %s requires a handler", def.OperationID)
	}
	if _, exists := r.byOp[def.OperationID]; exists {
		return nil, fmt.Errorf("endpoint %s is already registered", def.OperationID)
	}

	ep := &Endpoint{
		def:      def,
		sessions: r.cfg.Sessions,
		service:  r.cfg.Service,
		logger:   r.cfg.Logger,
		metrics:  r.cfg.Metrics,
	}
	r.endpoints = append(r.endpoints, ep)
	r.byOp[def.OperationID] = ep
	return ep, nil
}

// MustRegister 注册端点定义，失败时 panic。
// 仅用于服务启动阶段的静态注册。
func (r *Registry) MustRegister(def Definition) *Endpoint {
	ep, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return ep
}

// Endpoints 按注册顺序返回全部端点。
func (r *Registry) Endpoints() []*Endpoint {
	return r.endpoints
}

// Lookup 按操作 ID 查找端点。
func (r *Registry) Lookup(operationID string) (*Endpoint, bool) {
	ep, ok := r.byOp[operationID]
	return ep, ok
}
