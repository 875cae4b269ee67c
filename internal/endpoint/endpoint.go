// Package endpoint 实现了端点的编排逻辑。
// 端点是请求生命周期的指挥者：解析执行上下文、请求会话校验、
// 调用业务逻辑，并把结果（成功载荷或分类后的领域错误）交给
// 响应层序列化。所有失败都在这里被恰好捕获一次。
package endpoint

import (
	"context"
	"time"

	"github.com/oriys/strato/internal/domain"
	"github.com/oriys/strato/internal/execctx"
	"github.com/oriys/strato/internal/metrics"
	"github.com/oriys/strato/internal/response"
	"github.com/oriys/strato/internal/session"
	"github.com/sirupsen/logrus"
)

// ResultKind 表示端点业务逻辑产出结果的类别。
// 不同类别映射到不同的成功响应变体。
type ResultKind string

// 结果类别常量定义
const (
	// ResultItem 表示单资源结果（data 为资源或 null）
	ResultItem ResultKind = "item"
	// ResultCollection 表示多资源结果（data 为数组，meta 携带分页）
	ResultCollection ResultKind = "collection"
	// ResultCreated 表示资源创建结果（状态码固定 201）
	ResultCreated ResultKind = "created"
	// ResultDeleted 表示资源删除结果（仅基础信封）
	ResultDeleted ResultKind = "deleted"
)

// Result 表示端点业务逻辑的执行结果。
// 通过 Item/Collection/Created/Deleted 辅助函数构造。
type Result struct {
	// Kind 是结果类别
	Kind ResultKind
	// Resource 是单资源结果的载荷，可以为 nil
	Resource response.Resource
	// Resources 是多资源结果的载荷
	Resources []response.Resource
	// Pagination 是多资源结果的分页元数据
	Pagination response.Pagination
}

// Item 构造单资源结果，resource 为 nil 时响应 data 为 null。
func Item(resource response.Resource) *Result {
	return &Result{Kind: ResultItem, Resource: resource}
}

// Collection 构造多资源结果。
func Collection(resources []response.Resource, pagination response.Pagination) *Result {
	return &Result{Kind: ResultCollection, Resources: resources, Pagination: pagination}
}

// Created 构造资源创建结果。
func Created(resource response.Resource) *Result {
	return &Result{Kind: ResultCreated, Resource: resource}
}

// Deleted 构造资源删除结果。
func Deleted() *Result {
	return &Result{Kind: ResultDeleted}
}

// Request 表示传递给业务逻辑处理器的已授权请求。
type Request struct {
	// Context 是规范化后的执行上下文（对处理器只读）
	Context *execctx.Context
	// Claims 是通过校验的会话声明，端点不要求会话时为 nil
	Claims *session.Claims
}

// Handler 是端点业务逻辑的函数签名。
// 处理器返回结果或错误；已识别的领域错误按其固定状态码映射，
// 未识别的错误被包装为内部错误。
type Handler func(ctx context.Context, req *Request) (*Result, error)

// Definition 定义一个端点的静态配置。
// 配置在注册时声明一次，请求处理期间只读。
type Definition struct {
	// OperationID 是端点操作的唯一标识符
	OperationID string
	// Method 是 HTTP 方法（GET、POST 等）
	Method string
	// Path 是路由路径（chi 路由语法）
	Path string
	// RequireSession 端点是否要求会话
	RequireSession bool
	// SkipExpiryCheck 是否跳过凭证过期检查
	SkipExpiryCheck bool
	// AllowDevToken 是否允许自动签发开发凭证
	AllowDevToken bool
	// Handler 是业务逻辑处理器
	Handler Handler
}

// Endpoint 表示一个可执行的端点实例。
// 它把会话管理器、服务标识和指标收集器绑定到端点定义上。
type Endpoint struct {
	def      Definition
	sessions *session.Manager
	service  response.ServiceInfo
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

// Definition 返回端点的静态定义。
func (e *Endpoint) Definition() Definition {
	return e.def
}

// Execute 执行一次完整的请求生命周期。
// 流程：原始事件 → 上下文归一化 → 会话校验 → 业务逻辑 → 响应序列化。
// 控制流单向推进，错误从任一阶段直接短路到错误响应路径。
// 本方法绝不返回错误：每个失败都产出一个格式良好的错误信封。
//
// 参数:
//   - ctx: 请求的上下文
//   - ev: 原始调用事件
//
// 返回:
//   - *response.Response: 可直接返回给传输层的响应
func (e *Endpoint) Execute(ctx context.Context, ev *execctx.InvocationEvent) *response.Response {
	started := time.Now()
	opts := response.Options{
		OperationID: e.def.OperationID,
		Service:     e.service,
	}

	resp := e.execute(ctx, ev, &opts)
	e.metrics.RecordRequest(e.def.OperationID, resp.StatusCode, float64(time.Since(started).Milliseconds()))
	return resp
}

// execute 是生命周期各阶段的串联实现。
// opts 以指针传入，以便上下文解析成功后错误路径也能携带关联 ID。
func (e *Endpoint) execute(ctx context.Context, ev *execctx.InvocationEvent, opts *response.Options) *response.Response {
	// 阶段 1：归一化
	ec, err := execctx.Resolve(ev)
	if err != nil {
		return e.fail(opts, err)
	}
	opts.Ctx = ec

	// 阶段 2：会话校验
	sreq := &session.Request{Context: ec, Token: ec.SessionToken}
	claims, err := e.sessions.Validate(sreq, session.Policy{
		RequireSession:  e.def.RequireSession,
		SkipExpiryCheck: e.def.SkipExpiryCheck,
		AllowDevToken:   e.def.AllowDevToken,
	})
	if err != nil {
		derr := domain.Classify(err)
		e.metrics.RecordAuthFailure(string(derr.Kind))
		return e.fail(opts, derr)
	}

	// 阶段 3：业务逻辑
	result, err := e.def.Handler(ctx, &Request{Context: ec, Claims: claims})
	if err != nil {
		return e.fail(opts, err)
	}
	if result == nil {
		return e.fail(opts, domain.NewResponseValidation("handler returned no result", nil))
	}

	// 阶段 4：响应组装
	switch result.Kind {
	case ResultItem:
		return response.NewItem(*opts, result.Resource)
	case ResultCollection:
		return response.NewCollection(*opts, result.Resources, result.Pagination)
	case ResultCreated:
		return response.NewCreated(*opts, result.Resource)
	case ResultDeleted:
		return response.NewDeleted(*opts)
	default:
		return e.fail(opts, domain.NewResponseValidation("handler returned unknown result kind", nil))
	}
}

// fail 是错误响应路径：对错误做一次分类并产出错误信封。
// 5xx 类错误按 Error 级别记录日志，4xx 类按 Warn 级别。
func (e *Endpoint) fail(opts *response.Options, err error) *response.Response {
	derr := domain.Classify(err)

	if e.logger != nil {
		entry := e.logger.WithFields(logrus.Fields{
			"operation": e.def.OperationID,
			"code":      string(derr.Kind),
			"status":    derr.Status,
		})
		if derr.Cause != nil {
			entry = entry.WithError(derr.Cause)
		}
		if derr.Status >= 500 {
			entry.Error(derr.Message)
		} else {
			entry.Warn(derr.Message)
		}
	}

	return response.NewError(*opts, derr)
}
