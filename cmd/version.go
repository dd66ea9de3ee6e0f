package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// 这些变量在编译时通过 -ldflags 设置
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// versionCmd 版本信息命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "TechPulse API\n")
		fmt.Fprintf(out, "版本: %s\n", Version)
		fmt.Fprintf(out, "Git提交: %s\n", GitCommit)
		fmt.Fprintf(out, "构建时间: %s\n", BuildTime)
		fmt.Fprintf(out, "Go版本: %s\n", runtime.Version())
		fmt.Fprintf(out, "平台: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
