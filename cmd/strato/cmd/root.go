// Package cmd 包含 strato CLI 工具的所有命令实现。
// 使用 cobra 框架构建命令行接口。
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// 全局命令行标志变量
var (
	cfgFile string // 配置文件路径
	secret  string // 凭证签名密钥
)

// rootCmd 是 CLI 的根命令。
// 所有子命令都挂载在这个根命令下。
var rootCmd = &cobra.Command{
	Use:   "strato",
	Short: "Strato - endpoint framework CLI",
	Long: `strato 是端点框架的命令行工具，用于管理会话凭证。

使用示例:
  # 签发一个公开角色凭证
  strato token mint --persona public

  # 签发一个有效期 60 秒的开发凭证
  strato token mint --persona development --ttl 60

  # 检视一个已签发的凭证
  strato token inspect <token>`,
}

// Execute 执行根命令。
// 这是 CLI 的入口函数，由 main 包调用。
//
// 返回:
//   - error: 命令执行错误
func Execute() error {
	return rootCmd.Execute()
}

// init 初始化命令行工具，注册全局标志和配置初始化函数。
func init() {
	cobra.OnInitialize(initConfig)

	// 注册持久化标志（所有子命令都可使用）
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认为 $HOME/.strato.yaml）")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", "", "凭证签名密钥（建议通过 STRATO_SECRET 环境变量设置）")

	// 将标志绑定到 viper 配置
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))
}

// initConfig 初始化配置。
// 按优先级加载配置：命令行标志 > 环境变量 > 配置文件。
func initConfig() {
	if cfgFile != "" {
		// 使用用户指定的配置文件
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// 搜索配置文件的路径
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".strato")
	}

	// 环境变量格式：STRATO_<KEY>，如 STRATO_SECRET
	viper.SetEnvPrefix("STRATO")
	viper.AutomaticEnv()

	// 读取配置文件（如果存在）
	_ = viper.ReadInConfig()
}

// signingSecret 返回生效的签名密钥。
// 未设置时返回错误，避免用空密钥签发凭证。
func signingSecret() (string, error) {
	s := viper.GetString("secret")
	if s == "" {
		return "", fmt.Errorf("signing secret is required (use --secret or STRATO_SECRET)")
	}
	return s, nil
}
