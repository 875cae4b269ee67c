// Package metrics 提供 Prometheus 指标采集与上报的统一封装。
// 该包集中定义请求生命周期的关键指标（请求量、耗时、鉴权失败、
// 凭证签发），便于在各模块复用并保持标签一致。
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 封装端点框架的运行时指标集合。
// 所有字段均为 Prometheus 指标类型，通过辅助方法更新指标值。
//
// 指标分类:
//   - 请求指标: 跟踪端点请求的数量和耗时
//   - 鉴权指标: 统计会话校验的失败分类
//   - 凭证指标: 统计各角色的凭证签发量
type Metrics struct {
	// RequestsTotal 端点请求总次数计数器
	// 标签: operation, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration 端点请求耗时直方图（单位：毫秒）
	// 标签: operation
	// 桶边界: 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500 ms
	RequestDuration *prometheus.HistogramVec

	// AuthFailuresTotal 会话校验失败计数器，按失败分类统计
	// 标签: reason
	AuthFailuresTotal *prometheus.CounterVec

	// TokensIssuedTotal 凭证签发计数器，按角色统计
	// 标签: persona
	TokensIssuedTotal *prometheus.CounterVec
}

// NewMetrics 创建并注册一组 Prometheus 指标。
// namespace 用于作为所有指标名前缀，便于在同一 Prometheus 中区分不同应用。
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of endpoint requests",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_ms",
				Help:      "Endpoint request duration in milliseconds",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"operation"},
		),
		AuthFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of session validation failures",
			},
			[]string{"reason"},
		),
		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_issued_total",
				Help:      "Total number of session tokens issued",
			},
			[]string{"persona"},
		),
	}
}

// RecordRequest 记录一次端点请求的计数和耗时。
//
// 参数:
//   - operation: 端点操作标识符
//   - status: HTTP 等价状态码
//   - durationMs: 请求处理耗时（毫秒）
func (m *Metrics) RecordRequest(operation string, status int, durationMs float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(durationMs)
}

// RecordAuthFailure 记录一次会话校验失败。
//
// 参数:
//   - reason: 失败分类的稳定错误码
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordTokenIssued 记录一次凭证签发。
//
// 参数:
//   - persona: 凭证角色（public/system/development/custom）
func (m *Metrics) RecordTokenIssued(persona string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(persona).Inc()
}
