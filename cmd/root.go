package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/modelbench/client/pkg/client"
	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/dto"
	"github.com/modelbench/client/pkg/env"
	"github.com/modelbench/client/pkg/http"
	"github.com/modelbench/client/pkg/runner"
	_ "github.com/modelbench/client/pkg/tools/log"
	"github.com/modelbench/client/pkg/trace"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "modelbench",
	Short: "benchmark a model-serving endpoint",
	Long:  "modelbench drives a batch-inference benchmark workload against a model-serving endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool(env.Trace) {
			trace.Init()
		}

		ds, err := buildDataset()
		if err != nil {
			return err
		}
		cli, err := buildClient()
		if err != nil {
			return err
		}
		r, err := runner.New(runner.Config{
			BatchSize: viper.GetInt(env.BatchSize),
			Workers:   viper.GetInt(env.Workers),
			Async:     viper.GetBool(env.Async),
		}, cli, ds)
		if err != nil {
			return err
		}

		go serveObservability(r)

		times := r.Run()
		success, failure := r.Aggregator().Counts()
		zap.S().Infow("benchmark done", "batches", len(times), "success", success, "failure", failure)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func buildDataset() (dataset.Dataset, error) {
	switch viper.GetString(env.DatasetSource) {
	case env.DatasetSourceManifest:
		m, err := dataset.LoadManifest(viper.GetString(env.DatasetPath))
		if err != nil {
			return nil, err
		}
		return dataset.NewSynthetic(m), nil
	case env.DatasetSourceRedis:
		addr := fmt.Sprintf("%s:%s", viper.GetString(env.RedisIP), viper.GetString(env.RedisPort))
		return dataset.NewRedisDataset(context.Background(), addr,
			viper.GetString(env.RedisPassword), viper.GetInt(env.DefaultDb), viper.GetString(env.RedisKey))
	case env.DatasetSourceSynthetic:
		return dataset.NewSynthetic(dataset.DefaultManifest(viper.GetInt(env.DatasetSize))), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", viper.GetString(env.DatasetSource))
	}
}

func buildClient() (client.Client, error) {
	if viper.GetBool(env.Mock) {
		return client.NewMockClient(viper.GetString(env.ModelName)), nil
	}
	return client.NewTritonClient(viper.GetString(env.ServerURL),
		viper.GetString(env.ModelName), viper.GetString(env.ModelVersion))
}

func serveObservability(r *runner.Runner) {
	g := gin.Default()
	http.RegisterRoute(g, func() dto.StatusResponse {
		success, failure := r.Aggregator().Counts()
		return dto.StatusResponse{
			Success:        success,
			Failure:        failure,
			InFlight:       r.InFlight(),
			ExecutionCount: r.Aggregator().ExecutionCount(),
		}
	})
	if err := g.Run(fmt.Sprintf(":%s", viper.GetString(env.Port))); err != nil {
		zap.S().Errorw("observability server exited", "err", err)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringP(env.ServerURL, "u", "http://localhost:8000", "inference server url")
	viper.BindPFlag(env.ServerURL, rootCmd.Flags().Lookup(env.ServerURL))
	rootCmd.Flags().StringP(env.ModelName, "m", "", "model to benchmark")
	viper.BindPFlag(env.ModelName, rootCmd.Flags().Lookup(env.ModelName))
	rootCmd.Flags().String(env.ModelVersion, "1", "model version")
	viper.BindPFlag(env.ModelVersion, rootCmd.Flags().Lookup(env.ModelVersion))
	rootCmd.Flags().IntP(env.BatchSize, "b", 1, "samples per inference request")
	viper.BindPFlag(env.BatchSize, rootCmd.Flags().Lookup(env.BatchSize))
	rootCmd.Flags().BoolP(env.Async, "a", false, "use async inference requests")
	viper.BindPFlag(env.Async, rootCmd.Flags().Lookup(env.Async))
	rootCmd.Flags().IntP(env.Workers, "w", 4, "concurrent dispatch workers")
	viper.BindPFlag(env.Workers, rootCmd.Flags().Lookup(env.Workers))
	rootCmd.Flags().StringP(env.Port, "p", "8011", "observability server port")
	viper.BindPFlag(env.Port, rootCmd.Flags().Lookup(env.Port))
	rootCmd.Flags().Bool(env.Mock, false, "use the mock inference client")
	viper.BindPFlag(env.Mock, rootCmd.Flags().Lookup(env.Mock))
	rootCmd.Flags().String(env.DatasetSource, env.DatasetSourceSynthetic, "dataset source: synthetic, manifest or redis")
	viper.BindPFlag(env.DatasetSource, rootCmd.Flags().Lookup(env.DatasetSource))
	rootCmd.Flags().String(env.DatasetPath, "", "dataset manifest path")
	viper.BindPFlag(env.DatasetPath, rootCmd.Flags().Lookup(env.DatasetPath))
	rootCmd.Flags().Int(env.DatasetSize, 1000, "synthetic dataset size")
	viper.BindPFlag(env.DatasetSize, rootCmd.Flags().Lookup(env.DatasetSize))
	rootCmd.Flags().StringP(env.RedisIP, "I", "127.0.0.1", "redis ip of the dataset store")
	viper.BindPFlag(env.RedisIP, rootCmd.Flags().Lookup(env.RedisIP))
	rootCmd.Flags().StringP(env.RedisPort, "P", "6379", "redis port of the dataset store")
	viper.BindPFlag(env.RedisPort, rootCmd.Flags().Lookup(env.RedisPort))
	rootCmd.Flags().StringP(env.RedisPassword, "S", "", "redis password of the dataset store")
	viper.BindPFlag(env.RedisPassword, rootCmd.Flags().Lookup(env.RedisPassword))
	rootCmd.Flags().Int32P(env.DefaultDb, "D", 0, "redis db of the dataset store")
	viper.BindPFlag(env.DefaultDb, rootCmd.Flags().Lookup(env.DefaultDb))
	rootCmd.Flags().String(env.RedisKey, "samples", "redis list key holding the samples")
	viper.BindPFlag(env.RedisKey, rootCmd.Flags().Lookup(env.RedisKey))
	rootCmd.Flags().Bool(env.Trace, false, "enable jaeger tracing")
	viper.BindPFlag(env.Trace, rootCmd.Flags().Lookup(env.Trace))
	rootCmd.Flags().String(env.TraceAgentHostPort, "127.0.0.1:6831", "jaeger agent host and port")
	viper.BindPFlag(env.TraceAgentHostPort, rootCmd.Flags().Lookup(env.TraceAgentHostPort))
}
