// Package main 是 strato 命令行工具的入口点。
// strato 是端点框架的配套 CLI 工具，提供会话凭证的签发与检视等操作。
package main

import (
	"os"

	"github.com/oriys/strato/cmd/strato/cmd"
)

// main 是 CLI 工具的主函数。
// 它调用 cmd 包的 Execute 函数来解析和执行用户命令。
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
