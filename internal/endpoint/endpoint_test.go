// Package endpoint 实现了端点的编排逻辑。
package endpoint

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/oriys/strato/internal/domain"
	"github.com/oriys/strato/internal/execctx"
	"github.com/oriys/strato/internal/response"
	"github.com/oriys/strato/internal/session"
)

// widgetResource 是测试用的业务资源。
type widgetResource struct {
	index int
}

func (w *widgetResource) ProtocolDocument() map[string]any {
	return map[string]any{"index": w.index}
}

// newTestRegistry 构造一个绑定测试依赖的注册表。
func newTestRegistry() *Registry {
	return NewRegistry(Config{
		Sessions: session.NewManager("endpoint-test-secret", nil),
		Service:  response.ServiceInfo{Name: "strato-gateway", Version: "test"},
	})
}

// listWidgetsHandler 是分页列表的业务逻辑：对固定大小的记录源
// 按 pageNumber/pageSize 参数切片。
func listWidgetsHandler(total int) Handler {
	return func(ctx context.Context, req *Request) (*Result, error) {
		page, err := strconv.Atoi(req.Context.StringParameter("pageNumber"))
		if err != nil {
			return nil, domain.NewRequestValidation("pageNumber must be an integer", err)
		}
		size, err := strconv.Atoi(req.Context.StringParameter("pageSize"))
		if err != nil {
			return nil, domain.NewRequestValidation("pageSize must be an integer", err)
		}

		pg := response.NewPagination(total, size, page)
		resources := make([]response.Resource, 0, pg.RecordsReturned)
		for i := 0; i < pg.RecordsReturned; i++ {
			resources = append(resources, &widgetResource{index: pg.FirstRecordIndex + i})
		}
		return Collection(resources, pg), nil
	}
}

// TestExecute_PaginatedCollection 测试分页列表请求的完整生命周期。
// 25 条记录、第 2 页、页大小 10：响应为 200，data 含 10 条资源，
// 分页元数据标记 currentPage 为 2 且未覆盖全部记录。
func TestExecute_PaginatedCollection(t *testing.T) {
	reg := newTestRegistry()
	ep := reg.MustRegister(Definition{
		OperationID: "widgets.list",
		Method:      "GET",
		Path:        "/api/v1/widgets",
		Handler:     listWidgetsHandler(25),
	})

	ev := &execctx.InvocationEvent{
		QueryStringParameters: map[string]string{
			"pageNumber": "2",
			"pageSize":   "10",
		},
	}

	resp := ep.Execute(context.Background(), ev)
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}

	doc := resp.Document()
	data := doc["data"].([]map[string]any)
	if len(data) != 10 {
		t.Fatalf("len(data) = %d, want 10", len(data))
	}
	// 第 2 页的首条记录是全局索引 10
	if data[0]["index"] != 10 {
		t.Errorf("data[0].index = %v, want 10", data[0]["index"])
	}

	pg := doc["meta"].(map[string]any)["pagination"].(response.Pagination)
	if pg.CurrentPage != 2 {
		t.Errorf("pagination.currentPage = %d, want 2", pg.CurrentPage)
	}
	if pg.AllRecordsReturned {
		t.Error("pagination.allRecordsReturned = true, want false")
	}
}

// TestExecute_SessionGate 测试端点的会话门控。
// 要求会话且无凭证 → 401 缺失错误；不要求会话 → 无效凭证也放行。
func TestExecute_SessionGate(t *testing.T) {
	reg := newTestRegistry()
	okHandler := func(ctx context.Context, req *Request) (*Result, error) {
		return Item(&widgetResource{index: 1}), nil
	}

	guarded := reg.MustRegister(Definition{
		OperationID:    "widgets.get",
		Method:         "GET",
		Path:           "/api/v1/widgets/{id}",
		RequireSession: true,
		Handler:        okHandler,
	})
	open := reg.MustRegister(Definition{
		OperationID: "widgets.peek",
		Method:      "GET",
		Path:        "/api/v1/widgets/peek",
		Handler:     okHandler,
	})

	t.Run("guarded endpoint rejects missing token", func(t *testing.T) {
		resp := guarded.Execute(context.Background(), &execctx.InvocationEvent{})
		if resp.StatusCode != 401 {
			t.Fatalf("StatusCode = %d, want 401", resp.StatusCode)
		}
		entries := resp.Document()["errors"].([]map[string]any)
		if entries[0]["code"] != "MISSING_SESSION_TOKEN" {
			t.Errorf("errors[0].code = %v, want MISSING_SESSION_TOKEN", entries[0]["code"])
		}
	})

	t.Run("open endpoint ignores garbage token", func(t *testing.T) {
		ev := &execctx.InvocationEvent{SessionToken: "garbage"}
		resp := open.Execute(context.Background(), ev)
		if resp.StatusCode != 200 {
			t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("guarded endpoint accepts valid token", func(t *testing.T) {
		token, err := reg.cfg.Sessions.MintPublic(nil)
		if err != nil {
			t.Fatalf("MintPublic() error = %v", err)
		}
		ev := &execctx.InvocationEvent{SessionToken: token}
		resp := guarded.Execute(context.Background(), ev)
		if resp.StatusCode != 200 {
			t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
		}
	})
}

// TestExecute_ErrorClassification 测试处理器错误的单次分类。
// 领域错误保留其状态码，未识别错误被包装为内部错误。
func TestExecute_ErrorClassification(t *testing.T) {
	reg := newTestRegistry()

	tests := []struct {
		name       string // 测试用例名称
		op         string
		handler    Handler
		wantStatus int
		wantCode   string
	}{
		{
			name: "domain error keeps its status",
			op:   "widgets.bad",
			handler: func(ctx context.Context, req *Request) (*Result, error) {
				return nil, domain.NewRequestValidation("bad input", nil)
			},
			wantStatus: 400,
			wantCode:   "REQUEST_VALIDATION",
		},
		{
			name: "unrecognized error becomes internal",
			op:   "widgets.boom",
			handler: func(ctx context.Context, req *Request) (*Result, error) {
				return nil, fmt.Errorf("unexpected panic-adjacent failure")
			},
			wantStatus: 500,
			wantCode:   "INTERNAL",
		},
		{
			name: "nil result violates the response contract",
			op:   "widgets.empty",
			handler: func(ctx context.Context, req *Request) (*Result, error) {
				return nil, nil
			},
			wantStatus: 500,
			wantCode:   "RESPONSE_VALIDATION",
		},
		{
			name: "unknown result kind violates the response contract",
			op:   "widgets.weird",
			handler: func(ctx context.Context, req *Request) (*Result, error) {
				return &Result{Kind: ResultKind("mystery")}, nil
			},
			wantStatus: 500,
			wantCode:   "RESPONSE_VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := reg.MustRegister(Definition{
				OperationID: tt.op,
				Method:      "GET",
				Path:        "/" + tt.op,
				Handler:     tt.handler,
			})

			resp := ep.Execute(context.Background(), &execctx.InvocationEvent{})
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			entries := resp.Document()["errors"].([]map[string]any)
			if entries[0]["code"] != tt.wantCode {
				t.Errorf("errors[0].code = %v, want %s", entries[0]["code"], tt.wantCode)
			}
			// 错误信封绝不携带 data
			if _, hasData := resp.Document()["data"]; hasData {
				t.Error("error envelope carries data")
			}
		})
	}
}

// TestExecute_MalformedBody 测试请求体解析失败早于业务逻辑失败。
// 非法请求体必须在归一化阶段短路，处理器不被调用。
func TestExecute_MalformedBody(t *testing.T) {
	reg := newTestRegistry()
	invoked := false
	ep := reg.MustRegister(Definition{
		OperationID: "widgets.create",
		Method:      "POST",
		Path:        "/api/v1/widgets",
		Handler: func(ctx context.Context, req *Request) (*Result, error) {
			invoked = true
			return Created(&widgetResource{index: 0}), nil
		},
	})

	ev := &execctx.InvocationEvent{Body: `{"broken":`}
	resp := ep.Execute(context.Background(), ev)
	if resp.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
	}
	if invoked {
		t.Error("handler was invoked despite malformed body")
	}

	// 归一化失败早于上下文建立，关联 ID 置为 null
	meta := resp.Document()["meta"].(map[string]any)
	if meta["requestId"] != nil {
		t.Errorf("meta.requestId = %v, want nil", meta["requestId"])
	}
}

// TestExecute_CorrelationPropagation 测试系列 ID 贯穿响应头和元数据。
func TestExecute_CorrelationPropagation(t *testing.T) {
	reg := newTestRegistry()
	ep := reg.MustRegister(Definition{
		OperationID: "widgets.get",
		Method:      "GET",
		Path:        "/api/v1/widgets/{id}",
		Handler: func(ctx context.Context, req *Request) (*Result, error) {
			return Item(&widgetResource{index: 7}), nil
		},
	})

	ev := &execctx.InvocationEvent{
		Headers: map[string]string{execctx.CorrelationHeader: "series-upstream"},
	}
	resp := ep.Execute(context.Background(), ev)

	if got := resp.Headers[execctx.CorrelationHeader]; got != "series-upstream" {
		t.Errorf("correlation header = %s, want series-upstream", got)
	}
	meta := resp.Document()["meta"].(map[string]any)
	if meta["seriesId"] != "series-upstream" {
		t.Errorf("meta.seriesId = %v, want series-upstream", meta["seriesId"])
	}
}

// TestExecute_DeletedResult 测试删除结果映射到无 data 的成功信封。
func TestExecute_DeletedResult(t *testing.T) {
	reg := newTestRegistry()
	ep := reg.MustRegister(Definition{
		OperationID: "widgets.delete",
		Method:      "DELETE",
		Path:        "/api/v1/widgets/{id}",
		Handler: func(ctx context.Context, req *Request) (*Result, error) {
			return Deleted(), nil
		},
	})

	resp := ep.Execute(context.Background(), &execctx.InvocationEvent{})
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if _, hasData := resp.Document()["data"]; hasData {
		t.Error("deleted envelope carries data")
	}
	if _, hasErrors := resp.Document()["errors"]; hasErrors {
		t.Error("deleted envelope carries errors")
	}
}

// TestRegistry_Register 测试注册表的唯一性和完整性约束。
func TestRegistry_Register(t *testing.T) {
	reg := newTestRegistry()
	okHandler := func(ctx context.Context, req *Request) (*Result, error) {
		return Deleted(), nil
	}

	if _, err := reg.Register(Definition{OperationID: "", Handler: okHandler}); err == nil {
		t.Error("Register() accepted an empty operation id")
	}
	if _, err := reg.Register(Definition{OperationID: "op.a"}); err == nil {
		t.Error("Register() accepted a nil handler")
	}

	if _, err := reg.Register(Definition{OperationID: "op.a", Handler: okHandler}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := reg.Register(Definition{OperationID: "op.a", Handler: okHandler}); err == nil {
		t.Error("Register() accepted a duplicate operation id")
	}

	if ep, ok := reg.Lookup("op.a"); !ok || ep == nil {
		t.Error("Lookup() failed to find a registered endpoint")
	}
	if len(reg.Endpoints()) != 1 {
		t.Errorf("len(Endpoints()) = %d, want 1", len(reg.Endpoints()))
	}
}

// TestExecute_RecordsWallClock 测试执行耗时不影响结果的确定性。
// 多次执行同一端点，信封内容应保持稳定（时间仅进入指标）。
func TestExecute_RecordsWallClock(t *testing.T) {
	reg := newTestRegistry()
	ep := reg.MustRegister(Definition{
		OperationID: "widgets.slow",
		Method:      "GET",
		Path:        "/api/v1/widgets/slow",
		Handler: func(ctx context.Context, req *Request) (*Result, error) {
			time.Sleep(5 * time.Millisecond)
			return Item(&widgetResource{index: 1}), nil
		},
	})

	a := ep.Execute(context.Background(), &execctx.InvocationEvent{})
	b := ep.Execute(context.Background(), &execctx.InvocationEvent{})
	if a.StatusCode != b.StatusCode {
		t.Errorf("status codes differ between runs: %d vs %d", a.StatusCode, b.StatusCode)
	}
}
