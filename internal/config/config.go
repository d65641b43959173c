// Package config assembles the runtime configuration from defaults, an
// optional TOML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/TomasH60/semantic-blockchain/internal/util"
)

// PathEnv names the environment variable pointing at the TOML file.
const PathEnv = "EXPLORER_CONFIG"

// Duration is a time.Duration that decodes from strings such as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Debug    bool           `toml:"debug"`
	Server   ServerConfig   `toml:"server"`
	Loader   LoaderConfig   `toml:"loader"`
	AWS      AWSConfig      `toml:"aws"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Preload  PreloadConfig  `toml:"preload"`
}

type ServerConfig struct {
	Port            string   `toml:"port"`
	AllowOrigins    []string `toml:"allow_origins"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxUploadBytes  int64    `toml:"max_upload_bytes"`
}

type LoaderConfig struct {
	// Root is the directory "fs" sources are resolved in.
	Root    string `toml:"root"`
	Retries int    `toml:"retries"`
}

type AWSConfig struct {
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	// UploadPrefix is the key prefix uploaded dumps are archived under.
	UploadPrefix string `toml:"upload_prefix"`
}

// Enabled reports whether an S3 bucket is configured.
func (c AWSConfig) Enabled() bool {
	return c.Bucket != ""
}

type RabbitMQConfig struct {
	User          string   `toml:"user"`
	Password      string   `toml:"password"`
	Host          string   `toml:"host"`
	Port          string   `toml:"port"`
	IngestQueue   string   `toml:"ingest_queue"`
	EventExchange string   `toml:"event_exchange"`
	MaxRetries    int      `toml:"max_retries"`
	RetryDelay    Duration `toml:"retry_delay"`
}

// Enabled reports whether a broker host is configured.
func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

// URL returns the AMQP connection URL.
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

// PreloadConfig lists sources loaded when the server starts.
type PreloadConfig struct {
	Source    string   `toml:"source"`
	Ontology  string   `toml:"ontology"`
	Dataset   string   `toml:"dataset"`
	Instances []string `toml:"instances"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: Duration{10 * time.Second},
			MaxUploadBytes:  64 << 20,
		},
		Loader: LoaderConfig{
			Root:    ".",
			Retries: 3,
		},
		AWS: AWSConfig{
			Region:       "us-east-1",
			UploadPrefix: "uploads",
		},
		RabbitMQ: RabbitMQConfig{
			Port:          "5672",
			IngestQueue:   "ingest_queue",
			EventExchange: "graph_events",
			MaxRetries:    5,
			RetryDelay:    Duration{2 * time.Second},
		},
		Preload: PreloadConfig{
			Source: "fs",
		},
	}
}

// Load builds the configuration. The TOML file named by EXPLORER_CONFIG is
// applied over the defaults, then environment variables over both.
func Load() (Config, error) {
	cfg := Default()

	if path := util.GetEnv(PathEnv); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// LoadFile decodes the TOML file at path into cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	switch c.Preload.Source {
	case "fs", "s3":
	default:
		return fmt.Errorf("unknown preload source %q", c.Preload.Source)
	}
	if c.Preload.Source == "s3" && !c.AWS.Enabled() {
		return fmt.Errorf("preload source s3 requires an AWS bucket")
	}
	if c.Preload.Ontology != "" && c.Preload.Dataset != "" {
		return fmt.Errorf("preload ontology and dataset are mutually exclusive")
	}
	if len(c.Preload.Instances) > 0 && c.Preload.Ontology == "" {
		return fmt.Errorf("preloading instances requires an ontology")
	}
	return nil
}

func applyEnv(c *Config) {
	c.Debug = util.GetEnvBool("DEBUG", c.Debug)

	c.Server.Port = util.GetEnvString("PORT", c.Server.Port)
	if origins := util.GetEnv("ALLOW_ORIGINS"); origins != "" {
		c.Server.AllowOrigins = splitList(origins)
	}
	c.Server.ShutdownTimeout.Duration = util.GetEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout.Duration)
	c.Server.MaxUploadBytes = int64(util.GetEnvInt("MAX_UPLOAD_BYTES", int(c.Server.MaxUploadBytes)))

	c.Loader.Root = util.GetEnvString("LOADER_ROOT", c.Loader.Root)
	c.Loader.Retries = util.GetEnvInt("LOADER_RETRIES", c.Loader.Retries)

	c.AWS.Region = util.GetEnvString("AWS_REGION", c.AWS.Region)
	c.AWS.Endpoint = util.GetEnvString("AWS_ENDPOINT", c.AWS.Endpoint)
	c.AWS.AccessKey = util.GetEnvString("AWS_ACCESS_KEY", c.AWS.AccessKey)
	c.AWS.SecretKey = util.GetEnvString("AWS_SECRET_KEY", c.AWS.SecretKey)
	c.AWS.Bucket = util.GetEnvString("AWS_BUCKET", c.AWS.Bucket)
	c.AWS.UploadPrefix = util.GetEnvString("AWS_UPLOAD_PREFIX", c.AWS.UploadPrefix)

	c.RabbitMQ.User = util.GetEnvString("RABBITMQ_USER", c.RabbitMQ.User)
	c.RabbitMQ.Password = util.GetEnvString("RABBITMQ_PASSWORD", c.RabbitMQ.Password)
	c.RabbitMQ.Host = util.GetEnvString("RABBITMQ_HOST", c.RabbitMQ.Host)
	c.RabbitMQ.Port = util.GetEnvString("RABBITMQ_PORT", c.RabbitMQ.Port)
	c.RabbitMQ.IngestQueue = util.GetEnvString("INGEST_QUEUE", c.RabbitMQ.IngestQueue)
	c.RabbitMQ.EventExchange = util.GetEnvString("EVENT_EXCHANGE", c.RabbitMQ.EventExchange)
	c.RabbitMQ.MaxRetries = util.GetEnvInt("RABBITMQ_MAX_RETRIES", c.RabbitMQ.MaxRetries)
	c.RabbitMQ.RetryDelay.Duration = util.GetEnvDuration("RABBITMQ_RETRY_DELAY", c.RabbitMQ.RetryDelay.Duration)

	c.Preload.Source = util.GetEnvString("PRELOAD_SOURCE", c.Preload.Source)
	c.Preload.Ontology = util.GetEnvString("PRELOAD_ONTOLOGY", c.Preload.Ontology)
	c.Preload.Dataset = util.GetEnvString("PRELOAD_DATASET", c.Preload.Dataset)
	if instances := util.GetEnv("PRELOAD_INSTANCES"); instances != "" {
		c.Preload.Instances = splitList(instances)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
