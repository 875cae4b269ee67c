// Package execctx 实现了执行上下文的解析链。
// 该包负责将传输层特定的调用事件（HTTP 代理事件或平台直接调用）
// 归一化为规范的参数/请求体/头部模型，供会话校验和端点逻辑消费。
package execctx

// Identity 表示调用事件中携带的身份提示信息。
// 这些字段来自传输层，尚未经过任何校验。
type Identity struct {
	// SourceIP 是客户端的来源 IP 地址
	SourceIP string `json:"sourceIp,omitempty"`
	// APIKey 是客户端提供的 API 密钥
	APIKey string `json:"apiKey,omitempty"`
}

// RequestContext 表示平台注入的调用元数据。
// 对于函数计算风格的调用，该结构对应调用信封中的 requestContext 字段。
type RequestContext struct {
	// Stage 是部署环境标签（如 dev、staging、prod）
	Stage string `json:"stage,omitempty"`
	// Identity 是调用方的身份提示
	Identity Identity `json:"identity,omitempty"`
}

// InvocationEvent 表示一次原始调用的不透明载荷。
// 事件一经传入解析链即视为不可变：解析过程只从中提取值，
// 绝不修改原始引用。
//
// 字段覆盖两类传输形态：
//   - HTTP 代理事件：查询参数、路径参数、头部（单值和多值形式）、请求体
//   - 平台直接调用：命名参数（Parameters）
type InvocationEvent struct {
	// Parameters 是调用级别的命名参数（直接调用形态）
	Parameters map[string]any `json:"parameters,omitempty"`
	// QueryStringParameters 是 HTTP 查询字符串参数
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	// PathParameters 是 HTTP 路径参数
	PathParameters map[string]string `json:"pathParameters,omitempty"`
	// Headers 是单值形式的请求头
	Headers map[string]string `json:"headers,omitempty"`
	// MultiValueHeaders 是多值形式的请求头，键冲突时覆盖单值形式
	MultiValueHeaders map[string][]string `json:"multiValueHeaders,omitempty"`
	// Body 是请求体，可以是字符串、结构化文档或 nil
	Body any `json:"body,omitempty"`
	// RequestContext 是平台注入的调用元数据
	RequestContext RequestContext `json:"requestContext,omitempty"`
	// SessionToken 是显式携带的会话令牌字符串
	SessionToken string `json:"sessionToken,omitempty"`
}
