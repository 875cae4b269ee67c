// Package response 实现了协议响应信封的组装。
// 该包将端点的执行结果（成功载荷或领域错误）映射为统一的
// JSON-API 风格信封：jsonapi 版本、meta 元数据（请求/系列 ID、
// 操作 ID、环境、服务信息、可选分页）以及 data 或 errors 二选一。
package response

import (
	"encoding/json"
	"net/http"

	"github.com/oriys/strato/internal/domain"
	"github.com/oriys/strato/internal/execctx"
)

// jsonapiVersion 是信封声明的 JSON-API 协议版本
const jsonapiVersion = "1.0"

// ErrorDocBase 是错误文档链接的基础地址。
// 每个错误条目的 url 字段指向对应错误码的说明页面。
const ErrorDocBase = "https://docs.strato.dev/errors/"

// Resource 定义了下游业务模型必须暴露的序列化能力。
// 端点业务逻辑的结果通过该接口转换为协议对象，框架调用该能力但不定义其实现。
type Resource interface {
	// ProtocolDocument 将模型序列化为协议对象
	ProtocolDocument() map[string]any
}

// ServiceInfo 表示响应元数据中的服务标识。
type ServiceInfo struct {
	// Name 是服务名称
	Name string `json:"name"`
	// Version 是服务版本号
	Version string `json:"version"`
}

// Options 汇集组装一个响应信封所需的元数据来源。
type Options struct {
	// Ctx 是本次调用的执行上下文，缺失时关联 ID 置为 null
	Ctx *execctx.Context
	// OperationID 是端点操作的标识符
	OperationID string
	// Service 是服务标识信息
	Service ServiceInfo
}

// Response 表示一个组装完成的、可直接返回给传输层的响应。
// body 在构造时一次性建好，结构化表示和字符串表示都从
// 同一份内存文档导出，不做重复构建。
type Response struct {
	// StatusCode 是 HTTP 等价状态码
	StatusCode int
	// Headers 是响应头部映射，恒包含关联头部
	Headers map[string]string
	// body 是结构化的信封文档
	body map[string]any
}

// Document 返回响应的结构化信封文档。
func (r *Response) Document() map[string]any {
	return r.body
}

// String 将信封文档渲染为传输字符串形式。
func (r *Response) String() (string, error) {
	b, err := json.Marshal(r.body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newResponse 构造响应骨架：基础信封加上恒定的头部集合。
func newResponse(opts Options, status int) *Response {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	seriesID := ""
	if opts.Ctx != nil {
		seriesID = opts.Ctx.SeriesID
	}
	headers[execctx.CorrelationHeader] = seriesID

	return &Response{
		StatusCode: status,
		Headers:    headers,
		body:       baseEnvelope(opts),
	}
}

// baseEnvelope 构造信封的公共部分：jsonapi 版本和 meta 元数据。
// meta 始终完整填充，仅在执行上下文缺失时将关联 ID 置为 null。
func baseEnvelope(opts Options) map[string]any {
	meta := map[string]any{
		"requestId":   nil,
		"seriesId":    nil,
		"operationId": opts.OperationID,
		"stage":       "",
		"service": map[string]any{
			"name":    opts.Service.Name,
			"version": opts.Service.Version,
		},
	}
	if opts.Ctx != nil {
		meta["requestId"] = opts.Ctx.RequestID
		meta["seriesId"] = opts.Ctx.SeriesID
		meta["stage"] = opts.Ctx.Stage
	}

	return map[string]any{
		"jsonapi": map[string]any{"version": jsonapiVersion},
		"meta":    meta,
	}
}

// NewItem 构造单资源成功响应（200）。
// 资源缺失不是错误：data 显式置为 null。
//
// 参数:
//   - opts: 信封元数据来源
//   - resource: 序列化资源，可以为 nil
func NewItem(opts Options, resource Resource) *Response {
	r := newResponse(opts, http.StatusOK)
	if resource != nil {
		r.body["data"] = resource.ProtocolDocument()
	} else {
		r.body["data"] = nil
	}
	return r
}

// NewCollection 构造多资源成功响应（200）。
// data 是序列化资源数组，meta.pagination 携带分页元数据。
//
// 参数:
//   - opts: 信封元数据来源
//   - resources: 序列化资源列表
//   - pagination: 分页元数据
func NewCollection(opts Options, resources []Resource, pagination Pagination) *Response {
	r := newResponse(opts, http.StatusOK)

	data := make([]map[string]any, 0, len(resources))
	for _, res := range resources {
		data = append(data, res.ProtocolDocument())
	}
	r.body["data"] = data
	r.body["meta"].(map[string]any)["pagination"] = pagination
	return r
}

// NewCreated 构造资源创建成功响应（固定 201）。
// data 是创建出的资源，未产出资源时为一个空对象，绝不为 null。
func NewCreated(opts Options, resource Resource) *Response {
	r := newResponse(opts, http.StatusCreated)
	if resource != nil {
		r.body["data"] = resource.ProtocolDocument()
	} else {
		r.body["data"] = map[string]any{}
	}
	return r
}

// NewDeleted 构造资源删除成功响应（200）。
// 删除响应只包含基础信封，不携带 data 字段。
func NewDeleted(opts Options) *Response {
	return newResponse(opts, http.StatusOK)
}

// NewError 构造错误响应。
// 状态码取自首个领域错误的固定状态码；errors 数组每个条目携带
// 稳定错误码、标题、详情和文档链接；data 字段完全省略。
//
// 参数:
//   - opts: 信封元数据来源
//   - errs: 至少一个领域错误
func NewError(opts Options, errs ...*domain.Error) *Response {
	status := http.StatusInternalServerError
	if len(errs) > 0 {
		status = errs[0].Status
	}

	r := newResponse(opts, status)

	entries := make([]map[string]any, 0, len(errs))
	for _, e := range errs {
		entries = append(entries, map[string]any{
			"code":   string(e.Kind),
			"title":  http.StatusText(e.Status),
			"detail": e.Message,
			"url":    ErrorDocBase + string(e.Kind),
		})
	}
	r.body["errors"] = entries
	return r
}
