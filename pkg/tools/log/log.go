package log

import (
	"os"

	"go.uber.org/zap"
)

// this package is imported for its side effect only:
// it replaces the zap global logger so that every package
// can use zap.S() directly
func init() {
	var cfg zap.Config
	if os.Getenv("MODELBENCH_DEBUG") != "" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}
