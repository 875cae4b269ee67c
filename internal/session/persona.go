// Package session 实现了会话令牌的签发与校验引擎。
// 本文件定义了预置的凭证角色模板（persona）：public、system 和 development。
package session

// 角色标志常量定义
const (
	// FlagPublic 表示公开访问角色
	FlagPublic = "public"
	// FlagUnauthorized 表示未经认证的访问
	FlagUnauthorized = "unauthorized"
	// FlagSystem 表示系统角色，不受访问限制
	FlagSystem = "system"
	// FlagDevelopment 表示开发调试角色
	FlagDevelopment = "development"
)

// 预置角色使用的固定合成标识符。
// 这些 ID 不对应任何真实用户记录，仅用于标识角色会话。
const (
	publicUserID   = "00000000-0000-0000-0000-000000000010"
	publicPersonID = "00000000-0000-0000-0000-000000000011"
	systemUserID   = "00000000-0000-0000-0000-000000000020"
	systemPersonID = "00000000-0000-0000-0000-000000000021"
)

// claimsSchemaVersion 是当前声明结构的版本号
const claimsSchemaVersion = 1

// PublicPersona 返回公开访问角色的声明模板。
// 公开角色使用固定的合成用户标识，携带 public 和 unauthorized 标志，
// 用于向匿名客户端签发最低权限的凭证。
func PublicPersona() *Claims {
	return &Claims{
		UserID:        publicUserID,
		PersonID:      publicPersonID,
		Username:      "public",
		Flags:         []string{FlagPublic, FlagUnauthorized},
		SchemaVersion: claimsSchemaVersion,
	}
}

// SystemPersona 返回系统角色的声明模板。
// 系统角色携带 system 标志，拥有不受限制的访问权限，
// 用于服务之间的内部调用。
func SystemPersona() *Claims {
	return &Claims{
		UserID:        systemUserID,
		PersonID:      systemPersonID,
		Username:      "system",
		Flags:         []string{FlagSystem},
		SchemaVersion: claimsSchemaVersion,
	}
}

// DevelopmentPersona 返回开发角色的声明模板。
// 开发角色在系统角色的基础上附加 development 标志，
// 仅当请求显式允许时才会被自动签发。
func DevelopmentPersona() *Claims {
	c := SystemPersona()
	c.Flags = append(c.Flags, FlagDevelopment)
	return c
}
