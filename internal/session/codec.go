// Package session 实现了会话令牌的签发与校验引擎。
// 该包基于 JWT（HS256）实现带有效期的签名凭证，端点执行被
// 凭证校验门控：凭证的存在性、有效性和过期状态分别对应不同的失败分类。
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 定义令牌校验相关的错误类型
var (
	// ErrTokenInvalid 表示令牌签名或结构无效
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrTokenExpired 表示令牌已过期
	ErrTokenExpired = errors.New("session token has expired")
)

// Claims 定义会话令牌中携带的声明结构。
// 它包含用户/会话身份字段和标准的 JWT 注册声明。
type Claims struct {
	// Namespace 是会话所属的命名空间
	Namespace string `json:"namespace,omitempty"`
	// SessionID 是会话的唯一标识符
	SessionID string `json:"session_id,omitempty"`
	// UserID 是用户的唯一标识符
	UserID string `json:"user_id,omitempty"`
	// PersonID 是自然人的唯一标识符
	PersonID string `json:"person_id,omitempty"`
	// Username 是用户名
	Username string `json:"username,omitempty"`
	// APIKey 是签发时关联的 API 密钥
	APIKey string `json:"api_key,omitempty"`
	// Flags 是角色标志集合（如 public、system、development）
	Flags []string `json:"flags,omitempty"`
	// SchemaVersion 是声明结构的版本号
	SchemaVersion int `json:"schema_version,omitempty"`
	// SourceIP 是签发时记录的客户端来源 IP
	SourceIP string `json:"source_ip,omitempty"`
	// RegisteredClaims 嵌入标准 JWT 注册声明（签发时间、过期时间等）
	jwt.RegisteredClaims
}

// HasFlag 判断声明中是否包含指定的角色标志。
func (c *Claims) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Codec 负责会话令牌的签名与验证。
// 它封装了共享签名密钥，密钥通过构造函数显式注入，不做全局访问。
type Codec struct {
	// secret 是用于签名和验证令牌的共享密钥
	secret []byte
}

// NewCodec 创建并返回一个新的令牌编解码器实例。
//
// 参数:
//   - secret: 签名密钥，应为安全的随机字符串
//
// 返回:
//   - *Codec: 初始化后的编解码器
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign 使用给定声明签发一个新的会话令牌。
// 签发时间和过期时间由本方法写入声明，ttl 决定有效期窗口。
//
// 参数:
//   - claims: 令牌声明（身份字段已填充）
//   - ttl: 令牌有效期时长
//
// 返回:
//   - string: 签名后的紧凑令牌字符串
//   - error: 签名失败时返回错误
func (c *Codec) Sign(claims *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify 验证会话令牌并提取其中的声明。
// enforceExpiry 控制是否校验过期时间：忽略过期与强制过期是两种
// 独立的验证操作，校验流程会分别调用两次。
//
// 参数:
//   - tokenStr: 待验证的令牌字符串
//   - enforceExpiry: 是否强制校验过期时间
//
// 返回:
//   - *Claims: 验证成功时返回令牌声明
//   - error: ErrTokenExpired（仅在强制校验过期时）或 ErrTokenInvalid
func (c *Codec) Verify(tokenStr string, enforceExpiry bool) (*Claims, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}

	var opts []jwt.ParserOption
	if !enforceExpiry {
		// 跳过声明校验，仅验证签名和结构
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc, opts...)
	if err != nil {
		if enforceExpiry && errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
