// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type AssignmentConfig struct {
	IntervalMinutes int     `mapstructure:"intervalMinutes"`
	BatchSize       int64   `mapstructure:"batchSize"`
	BaseEarning     float64 `mapstructure:"baseEarning"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RazorpayConfig struct {
	KeyID     string `mapstructure:"keyID"`
	KeySecret string `mapstructure:"keySecret"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// --- Main Config struct combining all sub-structs ---

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Assignment AssignmentConfig `mapstructure:"assignment"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Razorpay   RazorpayConfig   `mapstructure:"razorpay"`
	S3         S3Config         `mapstructure:"s3"`
}

// LoadConfig reads configuration from file and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	// Map YAML keys to environment variables, e.g. "mongo.uri" -> MONGO_URI.
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("assignment.intervalMinutes", "ASSIGNMENT_INTERVAL_MINUTES")
	viper.BindEnv("assignment.batchSize", "ASSIGNMENT_BATCH_SIZE")
	viper.BindEnv("assignment.baseEarning", "ASSIGNMENT_BASE_EARNING")
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from", "SMTP_FROM")
	viper.BindEnv("razorpay.keyID", "RAZORPAY_KEY_ID")
	viper.BindEnv("razorpay.keySecret", "RAZORPAY_KEY_SECRET")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")

	// Read config.yaml if present. If the file is missing, Viper falls back
	// to environment variables only.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Defaults for the assignment service when not configured.
	if config.Assignment.IntervalMinutes <= 0 {
		config.Assignment.IntervalMinutes = 5
	}
	if config.Assignment.BatchSize <= 0 {
		config.Assignment.BatchSize = 20
	}
	if config.Assignment.BaseEarning <= 0 {
		config.Assignment.BaseEarning = 60
	}

	return
}
