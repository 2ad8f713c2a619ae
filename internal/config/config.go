package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type SequencerConfig struct {
	Workers int   `env:"WORKERS" envDefault:"1"`
	Seed    int64 `env:"SEED" envDefault:"0"`     // 为 0 时每次运行使用基于时间的种子
	Timeout int   `env:"TIMEOUT" envDefault:"60"` // 单次排序的超时时间，单位为秒
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"90"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required,notEmpty"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 单位为小时，14 天
		Secret     string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"task@scheduler"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN             string `env:"DSN,required,notEmpty"`
		PublishTimeout  int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		EmailQueue      string `env:"EMAIL_QUEUE" envDefault:"email_queue"`
		SequencingQueue string `env:"SEQUENCING_QUEUE" envDefault:"sequencing_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`    // 单位为秒
		ResultExpiration int    `env:"RESULT_EXPIRATION" envDefault:"1440"` // 排序结果缓存时间，单位为分钟
	} `envPrefix:"REDIS_"`
	Sequencer SequencerConfig `envPrefix:"SEQUENCER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// LoadSequencerConfig 只读取排序相关的配置，命令行工具不需要数据库等配置
func LoadSequencerConfig() (*SequencerConfig, error) {
	cfg := &SequencerConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "SEQUENCER_"}); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// 只返回第一个错误使得日志更清晰
func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
		return aggErr.Errors[0]
	}
	return err
}
