package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Store    StoreConfig
	Pipeline PipelineConfig
	App      AppConfig
}

// StoreConfig holds the connection info for the S3-compatible object store.
type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type PipelineConfig struct {
	WorkerCount    int
	RetryAttempts  int
	RetryBackoff   time.Duration
	FileExtensions []string
}

type AppConfig struct {
	TempDir    string
	StagingDir string
	LogLevel   string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("STORE_ENDPOINT", "s3.amazonaws.com")
		viper.SetDefault("STORE_REGION", "ap-southeast-1")
		viper.SetDefault("STORE_USE_SSL", true)
		viper.SetDefault("PIPELINE_WORKER_COUNT", 8)
		viper.SetDefault("PIPELINE_RETRY_ATTEMPTS", 3)
		viper.SetDefault("PIPELINE_RETRY_BACKOFF", "500ms")
		viper.SetDefault("PIPELINE_FILE_EXTENSIONS", []string{".xlsx", ".xlsm"})
		viper.SetDefault("APP_TEMP_DIR", "")
		viper.SetDefault("APP_STAGING_DIR", "./tmp/models")
		viper.SetDefault("APP_LOG_LEVEL", "info")

		// Read from environment variables; the store credentials use the
		// conventional AWS names so existing .env files keep working.
		viper.AutomaticEnv()
		_ = viper.BindEnv("STORE_ACCESS_KEY", "STORE_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
		_ = viper.BindEnv("STORE_SECRET_KEY", "STORE_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
		_ = viper.BindEnv("STORE_REGION", "STORE_REGION", "AWS_REGION")

		instance = &Config{
			Store: StoreConfig{
				Endpoint:  viper.GetString("STORE_ENDPOINT"),
				AccessKey: viper.GetString("STORE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORE_SECRET_KEY"),
				Region:    viper.GetString("STORE_REGION"),
				UseSSL:    viper.GetBool("STORE_USE_SSL"),
			},
			Pipeline: PipelineConfig{
				WorkerCount:    viper.GetInt("PIPELINE_WORKER_COUNT"),
				RetryAttempts:  viper.GetInt("PIPELINE_RETRY_ATTEMPTS"),
				RetryBackoff:   viper.GetDuration("PIPELINE_RETRY_BACKOFF"),
				FileExtensions: viper.GetStringSlice("PIPELINE_FILE_EXTENSIONS"),
			},
			App: AppConfig{
				TempDir:    viper.GetString("APP_TEMP_DIR"),
				StagingDir: viper.GetString("APP_STAGING_DIR"),
				LogLevel:   viper.GetString("APP_LOG_LEVEL"),
			},
		}
	})

	return instance
}
