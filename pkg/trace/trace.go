package trace

import (
	"time"

	"github.com/modelbench/client/pkg/env"
	"github.com/spf13/viper"
	"github.com/uber/jaeger-client-go"
	tracer_config "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
)

// Init installs a jaeger tracer as the opentracing global tracer.
// Without it the global tracer is a no-op and span creation in the
// runner costs nothing.
func Init() {
	cfg := &tracer_config.Configuration{}
	cfg.Sampler = &tracer_config.SamplerConfig{
		Type:  jaeger.SamplerTypeConst,
		Param: 1.0,
	}
	zap.S().Infow("use jaeger agent host and port", "HostAndPort", viper.GetString(env.TraceAgentHostPort))
	cfg.Reporter = &tracer_config.ReporterConfig{
		QueueSize:           100,
		BufferFlushInterval: 1 * time.Millisecond,
		LogSpans:            false,
		LocalAgentHostPort:  viper.GetString(env.TraceAgentHostPort),
	}

	_, err := cfg.InitGlobalTracer("modelbench") // closer ignored, tracer lives for the process lifetime
	if err != nil {
		panic(err)
	}
}
