package env

// viper keys shared between cmd flags and the packages that read them
const (
	ServerURL          = "serverUrl"
	ModelName          = "modelName"
	ModelVersion       = "modelVersion"
	BatchSize          = "batchSize"
	Async              = "async"
	Workers            = "workers"
	Port               = "port"
	Mock               = "mock"
	DatasetSource      = "datasetSource"
	DatasetPath        = "datasetPath"
	DatasetSize        = "datasetSize"
	RedisIP            = "RedisIp"
	RedisPort          = "RedisPort"
	RedisPassword      = "RedisPassword"
	RedisKey           = "RedisKey"
	DefaultDb          = "DefaultDb"
	Trace              = "trace"
	TraceAgentHostPort = "TraceAgentHostPort"
)

// dataset source kinds accepted by the datasetSource flag
const (
	DatasetSourceSynthetic = "synthetic"
	DatasetSourceManifest  = "manifest"
	DatasetSourceRedis     = "redis"
)
