// Package execctx 实现了执行上下文的解析链。
// 本文件实现了分层归一化逻辑：基础层、平台层和 HTTP 层按固定顺序
// 串联执行，每一层接收并返回规范化上下文（职责链模式）。
package execctx

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/oriys/strato/internal/domain"
)

// Step 表示解析链中的一个归一化步骤。
// 每个步骤从事件中提取数据并写入上下文，所有步骤都是
// 同步的内存变换，不允许阻塞。
type Step func(ev *InvocationEvent, c *Context) error

// DefaultChain 是默认的解析链步骤序列。
// 顺序固定：基础层 → 平台层 → HTTP 层，后面的层可以覆盖前面层的解析结果。
var DefaultChain = []Step{
	ResolveBase,
	ResolvePlatform,
	ResolveHTTP,
}

// Resolve 使用默认解析链将调用事件归一化为执行上下文。
//
// 参数:
//   - ev: 原始调用事件，解析过程中不会被修改
//
// 返回:
//   - *Context: 规范化后的执行上下文
//   - error: 归一化失败时的领域错误（如请求体解析失败）
func Resolve(ev *InvocationEvent) (*Context, error) {
	return ResolveWith(ev, DefaultChain...)
}

// ResolveWith 使用指定的步骤序列执行归一化。
// 主要用于测试和需要定制解析层的场景。
func ResolveWith(ev *InvocationEvent, steps ...Step) (*Context, error) {
	c := &Context{event: ev}
	for _, step := range steps {
		if err := step(ev, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ResolveBase 是基础层解析步骤。
// 它生成请求 ID，确定系列 ID（继承上游关联头部，否则等于请求 ID），
// 并从调用级命名参数播种参数集合。
func ResolveBase(ev *InvocationEvent, c *Context) error {
	c.RequestID = uuid.New().String()

	// 系列 ID 优先继承上游调用方传入的关联头部
	if series := lookupHeader(ev, CorrelationHeader); series != "" {
		c.SeriesID = series
	} else {
		c.SeriesID = c.RequestID
	}

	// 播种基础参数，复制一份以保证原始事件不可变
	c.Parameters = make(map[string]any, len(ev.Parameters))
	for k, v := range ev.Parameters {
		c.Parameters[k] = v
	}
	return nil
}

// ResolvePlatform 是平台层解析步骤。
// 该层是平台特定元数据的挂载点：提取部署环境标签、身份提示
// 和显式会话令牌。它不引入额外的必需变换。
func ResolvePlatform(ev *InvocationEvent, c *Context) error {
	c.Stage = ev.RequestContext.Stage
	c.SourceIP = ev.RequestContext.Identity.SourceIP
	c.APIKey = ev.RequestContext.Identity.APIKey
	c.SessionToken = ev.SessionToken
	return nil
}

// ResolveHTTP 是 HTTP 层解析步骤。
// 它依次完成：查询/路径参数的缺省化与合并、请求体解析、头部规范化。
// 合并优先级：路径参数 > 查询参数 > 基础参数，键冲突时后写入者胜出。
func ResolveHTTP(ev *InvocationEvent, c *Context) error {
	// 查询参数覆盖基础参数
	for k, v := range ev.QueryStringParameters {
		c.Parameters[k] = v
	}
	// 路径参数覆盖查询参数
	for k, v := range ev.PathParameters {
		c.Parameters[k] = v
	}

	body, err := resolveBody(ev.Body)
	if err != nil {
		return err
	}
	c.Body = body

	c.Headers = mergeHeaders(ev.Headers, ev.MultiValueHeaders)
	return nil
}

// resolveBody 将原始请求体解析为结构化对象。
// 解析规则：
//   - 字符串：按 JSON 解析，失败视为请求校验错误（400 类）
//   - 已是结构化对象：原样传递
//   - 其他类型（含 nil）：缺省为空对象
func resolveBody(raw any) (map[string]any, error) {
	switch b := raw.(type) {
	case string:
		parsed := make(map[string]any)
		if err := json.Unmarshal([]byte(b), &parsed); err != nil {
			return nil, domain.NewRequestValidation("request body is not a valid JSON document", err)
		}
		return parsed, nil
	case map[string]any:
		return b, nil
	default:
		return map[string]any{}, nil
	}
}

// mergeHeaders 合并单值和多值两种头部容器为规范头部映射。
// 多值来源的键覆盖单值来源中的同名键（区分大小写），
// 多值条目的各个值以逗号连接为单个字符串。
func mergeHeaders(singular map[string]string, plural map[string][]string) map[string]string {
	merged := make(map[string]string, len(singular)+len(plural))
	for k, v := range singular {
		merged[k] = v
	}
	for k, vs := range plural {
		merged[k] = strings.Join(vs, ",")
	}
	return merged
}

// lookupHeader 在两种头部容器中按名称查找头部值（不区分大小写）。
// 多值容器优先于单值容器，多值条目取第一个值。
func lookupHeader(ev *InvocationEvent, name string) string {
	for k, vs := range ev.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	for k, v := range ev.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
