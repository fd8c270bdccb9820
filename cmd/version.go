package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const clientVersion = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the benchmark client version.",
	Long:  "Print the benchmark client version.",
	Run: func(cmd *cobra.Command, args []string) {
		zap.S().Infow("modelbench client",
			"version", clientVersion,
			"go", runtime.Version(),
			"compiler", runtime.Compiler,
			"platform", runtime.GOOS+"/"+runtime.GOARCH,
		)
	},
}
