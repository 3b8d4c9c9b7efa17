// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout int           `mapstructure:"request_timeout"` // seconds
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type RabbitMQConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	QueueName  string `mapstructure:"queue_name"`
	RetryCount int    `mapstructure:"retry_count"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type EmailConfig struct {
	From        string `mapstructure:"from"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Enabled     bool   `mapstructure:"enabled"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type AuthConfig struct {
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	OtpTTL            time.Duration `mapstructure:"otp_ttl"`
	OtpResendCooldown time.Duration `mapstructure:"otp_resend_cooldown"`
	OtpLength         int           `mapstructure:"otp_length"`
}

type WorkerConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	OtpRetention    time.Duration `mapstructure:"otp_retention"`
	TokenRetention  time.Duration `mapstructure:"token_retention"`
}

type CacheConfig struct {
	EventTTL time.Duration `mapstructure:"event_ttl"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	// DATABASE_PASSWORD overrides database.password and so on
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Printf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("rabbitmq.queue_name", "eventhub.mail")
	v.SetDefault("kafka.topic", "booking-events")

	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("email.frontend_url", "http://localhost:3000")

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.otp_ttl", 2*time.Minute)
	v.SetDefault("auth.otp_resend_cooldown", time.Minute)
	v.SetDefault("auth.otp_length", 6)

	v.SetDefault("worker.cleanup_interval", 10*time.Minute)
	v.SetDefault("worker.otp_retention", time.Hour)
	v.SetDefault("worker.token_retention", 7*24*time.Hour)

	v.SetDefault("cache.event_ttl", 5*time.Minute)
}
