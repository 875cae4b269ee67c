// Package domain 定义了端点框架的核心领域模型。
// 本文件实现了领域错误分类体系：每种错误类型静态绑定一个 HTTP 状态码
// 和一个稳定的机器可读错误码，供响应层统一格式化失败结果。
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 表示领域错误的分类标签类型。
// 错误分类是一个封闭集合，每个分类对应唯一的 HTTP 状态码。
type ErrorKind string

// 错误分类常量定义
const (
	// KindMissingSessionToken 表示请求缺少会话令牌（端点要求会话时）
	KindMissingSessionToken ErrorKind = "MISSING_SESSION_TOKEN"
	// KindInvalidSessionToken 表示会话令牌签名或结构无效
	KindInvalidSessionToken ErrorKind = "INVALID_SESSION_TOKEN"
	// KindExpiredSessionToken 表示会话令牌已过期
	KindExpiredSessionToken ErrorKind = "EXPIRED_SESSION_TOKEN"
	// KindRequestValidation 表示请求数据校验失败（如请求体解析失败）
	KindRequestValidation ErrorKind = "REQUEST_VALIDATION"
	// KindResponseValidation 表示响应数据违反内部契约（始终为致命错误）
	KindResponseValidation ErrorKind = "RESPONSE_VALIDATION"
	// KindEnvironmentResolution 表示运行环境信息解析失败
	KindEnvironmentResolution ErrorKind = "ENVIRONMENT_RESOLUTION"
	// KindContextDataResolution 表示执行上下文数据解析失败
	KindContextDataResolution ErrorKind = "CONTEXT_DATA_RESOLUTION"
	// KindModelRequired 表示缺少必需的数据模型
	KindModelRequired ErrorKind = "MODEL_REQUIRED"
	// KindInternal 表示未分类的内部错误（兜底分类，避免泄露未知错误形态）
	KindInternal ErrorKind = "INTERNAL"
)

// kindStatus 是错误分类到 HTTP 状态码的固定映射表。
// 每个分类有且仅有一个状态码，禁止在运行时变更。
var kindStatus = map[ErrorKind]int{
	KindMissingSessionToken:   http.StatusUnauthorized,
	KindInvalidSessionToken:   http.StatusUnauthorized,
	KindExpiredSessionToken:   http.StatusUnauthorized,
	KindRequestValidation:     http.StatusBadRequest,
	KindResponseValidation:    http.StatusInternalServerError,
	KindEnvironmentResolution: http.StatusInternalServerError,
	KindContextDataResolution: http.StatusInternalServerError,
	KindModelRequired:         http.StatusBadRequest,
	KindInternal:              http.StatusInternalServerError,
}

// Error 表示一个带分类标签的领域错误。
// 它携带固定的 HTTP 状态码、稳定的错误码、用户可读的消息
// 以及可选的原始错误（仅用于诊断，绝不参与控制流）。
type Error struct {
	// Kind 是错误的分类标签
	Kind ErrorKind
	// Status 是该分类绑定的 HTTP 状态码
	Status int
	// Message 是用户可读的错误描述
	Message string
	// Cause 是被包装的原始错误，可以为 nil
	Cause error
}

// Error 实现 error 接口，返回错误描述。
// 如果存在原始错误，描述中会附带其信息。
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回被包装的原始错误，支持 errors.Is/As 链式检查。
func (e *Error) Unwrap() error {
	return e.Cause
}

// newError 构造指定分类的领域错误。
// 状态码从固定映射表中查找，保证每个分类只对应一个状态码。
func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Status:  kindStatus[kind],
		Message: message,
		Cause:   cause,
	}
}

// NewMissingSessionToken 构造"缺少会话令牌"错误（401）。
func NewMissingSessionToken(message string) *Error {
	return newError(KindMissingSessionToken, message, nil)
}

// NewInvalidSessionToken 构造"会话令牌无效"错误（401）。
// cause 携带底层验证失败的原因，仅用于日志诊断。
func NewInvalidSessionToken(message string, cause error) *Error {
	return newError(KindInvalidSessionToken, message, cause)
}

// NewExpiredSessionToken 构造"会话令牌已过期"错误（401）。
func NewExpiredSessionToken(message string, cause error) *Error {
	return newError(KindExpiredSessionToken, message, cause)
}

// NewRequestValidation 构造"请求校验失败"错误（400）。
func NewRequestValidation(message string, cause error) *Error {
	return newError(KindRequestValidation, message, cause)
}

// NewResponseValidation 构造"响应契约违反"错误（500）。
// 该错误表示内部契约被破坏，始终是致命错误。
func NewResponseValidation(message string, cause error) *Error {
	return newError(KindResponseValidation, message, cause)
}

// NewEnvironmentResolution 构造"环境解析失败"错误（500）。
func NewEnvironmentResolution(message string, cause error) *Error {
	return newError(KindEnvironmentResolution, message, cause)
}

// NewContextDataResolution 构造"上下文数据解析失败"错误（500）。
func NewContextDataResolution(message string, cause error) *Error {
	return newError(KindContextDataResolution, message, cause)
}

// NewModelRequired 构造"缺少数据模型"错误（400）。
// 适用于调用方未提供必需模型的场景。
func NewModelRequired(message string) *Error {
	return newError(KindModelRequired, message, nil)
}

// NewModelRequiredInternal 构造"缺少数据模型"错误的内部变体（500）。
// 适用于框架内部本应注入模型却缺失的场景。
func NewModelRequiredInternal(message string) *Error {
	e := newError(KindModelRequired, message, nil)
	e.Status = http.StatusInternalServerError
	return e
}

// NewInternal 构造"内部错误"（500），用于包装未分类的失败。
func NewInternal(message string, cause error) *Error {
	return newError(KindInternal, message, cause)
}

// Classify 将任意错误归类为领域错误。
// 已经是领域错误的原样返回；其他错误一律包装为内部错误，
// 避免向客户端泄露未分类的失败形态。
//
// 参数:
//   - err: 任意非 nil 错误
//
// 返回:
//   - *Error: 归类后的领域错误
func Classify(err error) *Error {
	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}
	return NewInternal("unexpected internal error", err)
}
