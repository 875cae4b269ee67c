// Package api 提供了端点框架的 HTTP 传输适配层。
// 本文件实现了凭证相关的端点：按角色模板签发会话令牌，
// 以及校验并回显当前会话的声明。这两个端点通过注册表走
// 完整的请求生命周期，与业务端点共享同一条管线。
package api

import (
	"context"

	"github.com/oriys/strato/internal/domain"
	"github.com/oriys/strato/internal/endpoint"
	"github.com/oriys/strato/internal/metrics"
	"github.com/oriys/strato/internal/session"
)

// TokenEndpointsConfig 定义凭证端点的配置。
type TokenEndpointsConfig struct {
	// Sessions 是会话管理器
	Sessions *session.Manager
	// Metrics 是指标收集器，可以为 nil
	Metrics *metrics.Metrics
	// AllowPrivilegedPersonas 是否允许签发 system/development 角色。
	// 生产环境应保持关闭，仅允许签发 public 角色。
	AllowPrivilegedPersonas bool
}

// RegisterTokenEndpoints 将凭证端点注册到端点注册表。
//
// 注册的端点：
//   - POST /api/v1/tokens          签发角色凭证（无需会话）
//   - GET  /api/v1/tokens/inspect  校验并回显当前会话声明（要求会话）
//
// 参数:
//   - reg: 端点注册表
//   - cfg: 凭证端点配置
//
// 返回:
//   - error: 注册冲突时返回错误
func RegisterTokenEndpoints(reg *endpoint.Registry, cfg TokenEndpointsConfig) error {
	if _, err := reg.Register(endpoint.Definition{
		OperationID: "tokens.create",
		Method:      "POST",
		Path:        "/api/v1/tokens",
		Handler:     mintTokenHandler(cfg),
	}); err != nil {
		return err
	}

	_, err := reg.Register(endpoint.Definition{
		OperationID:    "tokens.inspect",
		Method:         "GET",
		Path:           "/api/v1/tokens/inspect",
		RequireSession: true,
		Handler:        inspectTokenHandler(),
	})
	return err
}

// mintTokenHandler 返回凭证签发端点的业务逻辑。
// 请求体格式: {"persona": "public|system|development", "ttlSeconds": 3600}
// persona 缺省为 public；特权角色仅在配置显式允许时可签发。
func mintTokenHandler(cfg TokenEndpointsConfig) endpoint.Handler {
	return func(ctx context.Context, req *endpoint.Request) (*endpoint.Result, error) {
		persona, _ := req.Context.Body["persona"].(string)
		if persona == "" {
			persona = "public"
		}

		var data *session.Claims
		switch persona {
		case "public":
			data = session.PublicPersona()
		case "system":
			data = session.SystemPersona()
		case "development":
			data = session.DevelopmentPersona()
		default:
			return nil, domain.NewRequestValidation("unknown persona: "+persona, nil)
		}

		if persona != "public" && !cfg.AllowPrivilegedPersonas {
			return nil, domain.NewRequestValidation("persona "+persona+" is not allowed on this deployment", nil)
		}

		mint := session.NewMintConfig(data)
		// 请求体中的 JSON 数值解码为 float64
		if ttl, ok := req.Context.Body["ttlSeconds"].(float64); ok {
			mint.TTLSeconds = int(ttl)
		}

		token, err := cfg.Sessions.Mint(mint, req.Context)
		if err != nil {
			return nil, domain.NewInternal("failed to mint session token", err)
		}
		cfg.Metrics.RecordTokenIssued(persona)

		return endpoint.Created(&tokenResource{
			token:   token,
			persona: persona,
			claims:  data,
		}), nil
	}
}

// inspectTokenHandler 返回凭证回显端点的业务逻辑。
// 端点要求会话，执行到这里时声明已通过校验。
func inspectTokenHandler() endpoint.Handler {
	return func(ctx context.Context, req *endpoint.Request) (*endpoint.Result, error) {
		if req.Claims == nil {
			return nil, domain.NewModelRequiredInternal("authorized session claims are missing")
		}
		return endpoint.Item(&claimsResource{claims: req.Claims}), nil
	}
}

// tokenResource 是签发结果的协议资源表示。
type tokenResource struct {
	token   string
	persona string
	claims  *session.Claims
}

// ProtocolDocument 将签发结果序列化为协议对象。
func (t *tokenResource) ProtocolDocument() map[string]any {
	doc := map[string]any{
		"token":     t.token,
		"persona":   t.persona,
		"sessionId": t.claims.SessionID,
	}
	if t.claims.ExpiresAt != nil {
		doc["expiresAt"] = t.claims.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return doc
}

// claimsResource 是会话声明的协议资源表示。
type claimsResource struct {
	claims *session.Claims
}

// ProtocolDocument 将会话声明序列化为协议对象。
// 不回显 API 密钥等敏感字段。
func (c *claimsResource) ProtocolDocument() map[string]any {
	return map[string]any{
		"namespace":     c.claims.Namespace,
		"sessionId":     c.claims.SessionID,
		"userId":        c.claims.UserID,
		"personId":      c.claims.PersonID,
		"username":      c.claims.Username,
		"flags":         c.claims.Flags,
		"schemaVersion": c.claims.SchemaVersion,
		"sourceIp":      c.claims.SourceIP,
	}
}
