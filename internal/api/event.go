// Package api 提供了端点框架的 HTTP 传输适配层。
// 本文件负责 HTTP 请求与调用事件之间的双向转换：
// 将 http.Request 提取为规范的调用事件，并把组装好的响应写回传输层。
package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oriys/strato/internal/execctx"
	"github.com/oriys/strato/internal/response"
)

// EventConfig 定义事件提取时使用的传输层约定。
type EventConfig struct {
	// Stage 是部署环境标签，写入事件的 requestContext
	Stage string
	// APIKeyHeader 是携带 API 密钥的头部名称
	APIKeyHeader string
	// SessionTokenHeader 是显式携带会话令牌的头部名称
	SessionTokenHeader string
}

// EventFromRequest 将 HTTP 请求提取为调用事件。
// 提取内容包括：查询参数、chi 路径参数、单值与多值头部、
// 请求体文本、来源 IP、API 密钥和会话令牌。
// 会话令牌优先取自 Authorization Bearer 头部，其次取自显式令牌头部。
//
// 参数:
//   - r: HTTP 请求
//   - cfg: 传输层约定
//
// 返回:
//   - *execctx.InvocationEvent: 提取出的调用事件
func EventFromRequest(r *http.Request, cfg EventConfig) *execctx.InvocationEvent {
	ev := &execctx.InvocationEvent{
		QueryStringParameters: make(map[string]string),
		PathParameters:        make(map[string]string),
		Headers:               make(map[string]string),
		MultiValueHeaders:     make(map[string][]string),
		RequestContext: execctx.RequestContext{
			Stage: cfg.Stage,
			Identity: execctx.Identity{
				// RealIP 中间件已将代理头部解析进 RemoteAddr
				SourceIP: clientIP(r),
				APIKey:   r.Header.Get(cfg.APIKeyHeader),
			},
		},
	}

	// 查询参数取每个键的首个值
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			ev.QueryStringParameters[k] = vs[0]
		}
	}

	// chi 路由上下文中的路径参数
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			ev.PathParameters[key] = rctx.URLParams.Values[i]
		}
	}

	// 头部同时保留单值和多值两种形态，由解析链负责合并
	for k, vs := range r.Header {
		if len(vs) > 0 {
			ev.Headers[k] = vs[0]
		}
		ev.MultiValueHeaders[k] = vs
	}

	// 请求体按原始文本传递，结构化解析由解析链完成
	if r.Body != nil {
		if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
			ev.Body = string(body)
		}
	}

	ev.SessionToken = extractToken(r, cfg.SessionTokenHeader)
	return ev
}

// extractToken 从请求头中提取会话令牌。
// Authorization Bearer 形式优先，其次是显式令牌头部。
func extractToken(r *http.Request, tokenHeader string) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if tokenHeader != "" {
		return r.Header.Get(tokenHeader)
	}
	return ""
}

// clientIP 提取客户端 IP（去掉端口部分）。
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 && !strings.Contains(addr[i:], "]") {
		return addr[:i]
	}
	return addr
}

// WriteResponse 将组装好的响应写回 HTTP 传输层。
// 依次写入头部、状态码和信封的字符串形式。
//
// 参数:
//   - w: HTTP 响应写入器
//   - resp: 组装完成的响应
func WriteResponse(w http.ResponseWriter, resp *response.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	body, err := resp.String()
	if err != nil {
		// 信封自身无法序列化属于内部契约违反，降级为最小错误体
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"code":"RESPONSE_VALIDATION","title":"Internal Server Error"}]}`))
		return
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(body))
}
