// Package execctx 实现了执行上下文的解析链。
// 本文件定义了规范化后的每次调用上下文记录。
package execctx

// CorrelationHeader 是跨请求关联 ID 的头部名称。
// 上游调用方通过该头部传递系列 ID，实现调用链路的关联。
const CorrelationHeader = "X-Correlation-Id"

// Context 表示一次调用的规范化上下文记录。
// 它由解析链在调用开始时创建并填充，此后对下游组件只读，
// 调用结束即丢弃，不做跨调用持久化。
type Context struct {
	// RequestID 是本次调用的唯一标识符（UUID）
	RequestID string
	// SeriesID 是关联 ID：继承自上游调用方的关联头部，否则等于 RequestID
	SeriesID string
	// Stage 是部署环境标签
	Stage string
	// Parameters 是按优先级合并后的参数集合：
	// 路径参数 > 查询参数 > 基础参数（键冲突时后写入者胜出）
	Parameters map[string]any
	// Body 是解析后的结构化请求体，解析完成后恒为结构化对象，绝不为原始字符串
	Body map[string]any
	// Headers 是大小写规范化后的头部映射（多值来源覆盖单值来源）
	Headers map[string]string
	// SourceIP 是客户端来源 IP
	SourceIP string
	// APIKey 是客户端提供的 API 密钥
	APIKey string
	// SessionToken 是显式携带的会话令牌字符串
	SessionToken string

	// event 保存原始调用事件的引用，归一化完成后不再被修改
	event *InvocationEvent
}

// Event 返回本次调用的原始事件引用。
// 返回值仅供诊断使用，调用方不得修改。
func (c *Context) Event() *InvocationEvent {
	return c.event
}

// Parameter 按名称读取合并后的参数值。
//
// 参数:
//   - name: 参数名称
//
// 返回:
//   - any: 参数值，不存在时为 nil
//   - bool: 参数是否存在
func (c *Context) Parameter(name string) (any, bool) {
	v, ok := c.Parameters[name]
	return v, ok
}

// StringParameter 按名称读取字符串形式的参数值。
// 参数不存在或不是字符串时返回空字符串。
func (c *Context) StringParameter(name string) string {
	if v, ok := c.Parameters[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Header 按名称读取规范化后的头部值，不存在时返回空字符串。
func (c *Context) Header(name string) string {
	return c.Headers[name]
}
