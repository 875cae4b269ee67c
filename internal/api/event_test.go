// Package api 提供了端点框架的 HTTP 传输适配层。
package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// TestEventFromRequest 测试 HTTP 请求到调用事件的提取。
func TestEventFromRequest(t *testing.T) {
	cfg := EventConfig{
		Stage:              "testing",
		APIKeyHeader:       "X-API-Key",
		SessionTokenHeader: "X-Session-Token",
	}

	r := httptest.NewRequest("GET", "/api/v1/widgets?pageNumber=2&pageSize=10", nil)
	r.RemoteAddr = "198.51.100.4:52301"
	r.Header.Set("X-API-Key", "key-1")
	r.Header.Set("X-Session-Token", "token-1")
	r.Header.Add("Accept", "application/json")
	r.Header.Add("Accept", "text/plain")

	// 模拟 chi 路由匹配出的路径参数
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "w-42")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	ev := EventFromRequest(r, cfg)

	if ev.QueryStringParameters["pageNumber"] != "2" {
		t.Errorf("query pageNumber = %s, want 2", ev.QueryStringParameters["pageNumber"])
	}
	if ev.PathParameters["id"] != "w-42" {
		t.Errorf("path id = %s, want w-42", ev.PathParameters["id"])
	}
	if ev.RequestContext.Stage != "testing" {
		t.Errorf("stage = %s, want testing", ev.RequestContext.Stage)
	}
	if ev.RequestContext.Identity.SourceIP != "198.51.100.4" {
		t.Errorf("source ip = %s, want 198.51.100.4", ev.RequestContext.Identity.SourceIP)
	}
	if ev.RequestContext.Identity.APIKey != "key-1" {
		t.Errorf("api key = %s, want key-1", ev.RequestContext.Identity.APIKey)
	}
	if ev.SessionToken != "token-1" {
		t.Errorf("session token = %s, want token-1", ev.SessionToken)
	}
	// 多值头部保留全部取值
	if vs := ev.MultiValueHeaders["Accept"]; len(vs) != 2 {
		t.Errorf("multi-value Accept = %v, want two values", vs)
	}
}

// TestEventFromRequest_TokenSources 测试会话令牌的提取优先级。
// Authorization Bearer 形式优先于显式令牌头部。
func TestEventFromRequest_TokenSources(t *testing.T) {
	cfg := EventConfig{SessionTokenHeader: "X-Session-Token"}

	tests := []struct {
		name    string // 测试用例名称
		headers map[string]string
		want    string
	}{
		{
			name:    "bearer token wins",
			headers: map[string]string{"Authorization": "Bearer from-bearer", "X-Session-Token": "from-header"},
			want:    "from-bearer",
		},
		{
			name:    "explicit header as fallback",
			headers: map[string]string{"X-Session-Token": "from-header"},
			want:    "from-header",
		},
		{
			name:    "non-bearer authorization is ignored",
			headers: map[string]string{"Authorization": "Basic dXNlcg=="},
			want:    "",
		},
		{
			name:    "no token sources",
			headers: map[string]string{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := EventFromRequest(r, cfg).SessionToken; got != tt.want {
				t.Errorf("SessionToken = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestEventFromRequest_Body 测试请求体按原始文本传递。
func TestEventFromRequest_Body(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"persona":"public"}`))

	ev := EventFromRequest(r, EventConfig{})
	body, ok := ev.Body.(string)
	if !ok {
		t.Fatalf("Body = %T, want raw string", ev.Body)
	}
	if body != `{"persona":"public"}` {
		t.Errorf("Body = %s, want the raw request text", body)
	}
}

// TestClientIP 测试来源地址的端口剥离。
func TestClientIP(t *testing.T) {
	tests := []struct {
		name string // 测试用例名称
		addr string
		want string
	}{
		{name: "ipv4 with port", addr: "192.0.2.1:8080", want: "192.0.2.1"},
		{name: "ipv4 without port", addr: "192.0.2.1", want: "192.0.2.1"},
		{name: "ipv6 with port", addr: "[2001:db8::1]:8080", want: "[2001:db8::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.addr
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP(%s) = %s, want %s", tt.addr, got, tt.want)
			}
		})
	}
}
