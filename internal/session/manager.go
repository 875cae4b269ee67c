// Package session 实现了会话令牌的签发与校验引擎。
// 本文件实现了会话管理器：对单个请求执行固定顺序的校验状态机
// （跳过检查 → 提取 → 存在性 → 有效性 → 过期检查），
// 并支持按预置角色模板签发新凭证。
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/strato/internal/domain"
	"github.com/oriys/strato/internal/execctx"
	"github.com/sirupsen/logrus"
)

// TTL 相关常量定义
const (
	// DefaultTTLSeconds 是凭证有效期的默认值（1 小时）
	DefaultTTLSeconds = 3600
	// MaxTTLSeconds 是凭证有效期的上限（12 小时）
	// 无论调用方传入什么值，有效期都会被钳制到该上限以内
	MaxTTLSeconds = 43200
)

// Policy 定义端点对会话校验的策略。
// 策略由端点定义静态声明，校验状态机按策略决定执行哪些步骤。
type Policy struct {
	// RequireSession 端点是否要求会话，为 false 时跳过全部校验
	RequireSession bool
	// SkipExpiryCheck 是否跳过过期检查（显式选择不强制过期）
	SkipExpiryCheck bool
	// AllowDevToken 是否允许在缺少凭证时自动签发开发凭证
	AllowDevToken bool
}

// Request 表示一次待校验的请求。
// Token 来自执行上下文中显式携带的凭证字段，校验通过后
// 解码出的声明会被附加到 Claims 字段。
type Request struct {
	// Context 是本次调用的执行上下文
	Context *execctx.Context
	// Token 是显式携带的凭证字符串
	Token string
	// Claims 是校验通过后附加的解码声明
	Claims *Claims
}

// MintConfig 定义凭证签发的配置。
// 通过 NewMintConfig 构造以获得文档化的默认值。
type MintConfig struct {
	// Data 是凭证的声明载荷（身份字段）
	Data *Claims
	// SourceIP 是签发时记录的来源 IP，为空时从活动请求上下文补全
	SourceIP string
	// TTLSeconds 是有效期秒数，会被钳制到 [0, MaxTTLSeconds]
	TTLSeconds int
}

// NewMintConfig 构造凭证签发配置，应用默认有效期。
//
// 参数:
//   - data: 凭证的声明载荷
//
// 返回:
//   - MintConfig: 有效期为 DefaultTTLSeconds 的签发配置
func NewMintConfig(data *Claims) MintConfig {
	return MintConfig{
		Data:       data,
		TTLSeconds: DefaultTTLSeconds,
	}
}

// clampTTL 将有效期秒数钳制到运维安全的取值范围 [0, MaxTTLSeconds]。
func (cfg MintConfig) clampTTL() int {
	ttl := cfg.TTLSeconds
	if ttl < 0 {
		return 0
	}
	if ttl > MaxTTLSeconds {
		return MaxTTLSeconds
	}
	return ttl
}

// Manager 是会话管理器。
// 它持有令牌编解码器和可选的日志记录器，对每个请求执行
// 校验状态机，并负责按角色模板签发凭证。
// 签名密钥通过构造函数显式传入，进程内只读，可被多个并发请求共享。
type Manager struct {
	// codec 是令牌编解码器
	codec *Codec
	// logger 是可选的结构化日志记录器，为 nil 时所有日志投影为空操作
	logger *logrus.Logger
}

// NewManager 创建并返回一个新的会话管理器实例。
//
// 参数:
//   - secret: 凭证签名密钥（显式注入，不做全局访问）
//   - logger: 结构化日志记录器，可以为 nil
//
// 返回:
//   - *Manager: 初始化后的会话管理器
func NewManager(secret string, logger *logrus.Logger) *Manager {
	return &Manager{
		codec:  NewCodec(secret),
		logger: logger,
	}
}

// Codec 返回管理器持有的令牌编解码器。
func (m *Manager) Codec() *Codec {
	return m.codec
}

// Validate 对请求执行会话校验状态机。
// 步骤严格按以下顺序执行，任一步骤失败立即终止，后续步骤不再尝试：
//
//  1. 跳过检查：端点不要求会话时直接通过
//  2. 提取：显式凭证字段（去除首尾空白后非空）→ 自动签发的开发凭证 → 无
//  3. 存在性检查：要求会话但无凭证 → MissingSessionToken
//  4. 有效性检查：忽略过期验证签名，失败 → InvalidSessionToken
//  5. 过期检查：除非策略显式跳过，以强制过期模式再次独立验证，
//     失败 → ExpiredSessionToken
//
// 校验通过后声明被附加到请求，并将会话字段投影到日志上下文。
//
// 参数:
//   - req: 待校验的请求
//   - policy: 端点的会话策略
//
// 返回:
//   - *Claims: 通过校验的凭证声明，端点不要求会话时为 nil
//   - error: 携带固定状态码的领域错误
func (m *Manager) Validate(req *Request, policy Policy) (*Claims, error) {
	// 步骤 1：端点不要求会话，直接进入 Authorized 终态
	if !policy.RequireSession {
		return nil, nil
	}

	// 步骤 2：提取凭证
	token := strings.TrimSpace(req.Token)
	if token == "" && policy.AllowDevToken {
		dev, err := m.MintDevelopment(req.Context)
		if err != nil {
			return nil, domain.NewInternal("failed to mint development token", err)
		}
		token = dev
	}

	// 步骤 3：存在性检查
	if token == "" {
		return nil, domain.NewMissingSessionToken("a session token is required for this endpoint")
	}

	// 步骤 4：有效性检查（忽略过期，仅验证签名和结构）
	claims, err := m.codec.Verify(token, false)
	if err != nil {
		return nil, domain.NewInvalidSessionToken("session token failed verification", err)
	}

	// 步骤 5：过期检查（独立的第二次验证，过期感知与过期忽略是不同的操作）
	if !policy.SkipExpiryCheck {
		if _, err := m.codec.Verify(token, true); err != nil {
			return nil, domain.NewExpiredSessionToken("session token has expired", err)
		}
	}

	// 到达 Authorized 终态：附加声明并投影会话字段到日志上下文
	req.Claims = claims
	m.projectClaims(claims)

	return claims, nil
}

// projectClaims 将已授权会话的关键字段投影到日志上下文。
// 日志记录器缺失时为空操作，绝不报错。
func (m *Manager) projectClaims(claims *Claims) {
	if m.logger == nil {
		return
	}
	m.logger.WithFields(logrus.Fields{
		"session_id":     claims.SessionID,
		"namespace":      claims.Namespace,
		"source_ip":      claims.SourceIP,
		"flags":          claims.Flags,
		"schema_version": claims.SchemaVersion,
		"person_id":      claims.PersonID,
		"username":       claims.Username,
		"user_id":        claims.UserID,
	}).Debug("session authorized")
}

// Mint 按配置签发一个新的会话凭证。
// 有效期被钳制到 [0, MaxTTLSeconds]；来源 IP 和 API 密钥为空时
// 从活动请求上下文中的身份提示补全。
//
// 参数:
//   - cfg: 签发配置
//   - active: 活动请求的执行上下文，可以为 nil
//
// 返回:
//   - string: 签名后的凭证字符串
//   - error: 签发失败时返回错误
func (m *Manager) Mint(cfg MintConfig, active *execctx.Context) (string, error) {
	claims := cfg.Data
	if claims == nil {
		claims = &Claims{SchemaVersion: claimsSchemaVersion}
	}
	// 每次签发产生新的会话标识
	if claims.SessionID == "" {
		claims.SessionID = uuid.New().String()
	}

	sourceIP := cfg.SourceIP
	if active != nil {
		if sourceIP == "" {
			sourceIP = active.SourceIP
		}
		if claims.APIKey == "" {
			claims.APIKey = active.APIKey
		}
	}
	claims.SourceIP = sourceIP

	ttl := time.Duration(cfg.clampTTL()) * time.Second
	return m.codec.Sign(claims, ttl)
}

// MintPublic 按公开角色模板签发凭证。
func (m *Manager) MintPublic(active *execctx.Context) (string, error) {
	return m.Mint(NewMintConfig(PublicPersona()), active)
}

// MintSystem 按系统角色模板签发凭证。
func (m *Manager) MintSystem(active *execctx.Context) (string, error) {
	return m.Mint(NewMintConfig(SystemPersona()), active)
}

// MintDevelopment 按开发角色模板签发凭证。
// 开发凭证仅在请求显式允许自动签发时由校验状态机使用。
func (m *Manager) MintDevelopment(active *execctx.Context) (string, error) {
	return m.Mint(NewMintConfig(DevelopmentPersona()), active)
}
