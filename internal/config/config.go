package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
)

const (
	WardLayoutUniform = "uniform"
	WardLayoutFloor   = "floor"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		MigrationTimeout   int    `env:"MIGRATION_TIMEOUT" envDefault:"300"`
		AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"Administrator"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 days
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
		GenerationLockTTL   int    `env:"GENERATION_LOCK_TTL" envDefault:"300"` // 5 minutes
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 minutes
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Ward struct {
		Layout      string `env:"LAYOUT" envDefault:"uniform"`
		TotalBeds   int    `env:"TOTAL_BEDS" envDefault:"12"`
		BedsPerRoom int    `env:"BEDS_PER_ROOM" envDefault:"4"`
		FloorGroups []int  `env:"FLOOR_GROUPS" envDefault:"22,10" envSeparator:","`
	} `envPrefix:"WARD_"`
	Schedule struct {
		GenerationNote    string `env:"GENERATION_NOTE" envDefault:"Dijadwalkan otomatis"`
		MaxGenerationDays int    `env:"MAX_GENERATION_DAYS" envDefault:"0"` // 0 means no cap
	} `envPrefix:"SCHEDULE_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// only the first error, to keep the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// BedLayout builds the ward layout used by the bed allocator.
func (cfg *Config) BedLayout() (scheduler.BedLayout, error) {
	switch cfg.Ward.Layout {
	case WardLayoutUniform:
		return scheduler.UniformLayout(cfg.Ward.TotalBeds, cfg.Ward.BedsPerRoom)
	case WardLayoutFloor:
		return scheduler.GroupedLayout(cfg.Ward.FloorGroups...)
	default:
		return scheduler.BedLayout{}, fmt.Errorf("WARD_LAYOUT tidak dikenal: %q", cfg.Ward.Layout)
	}
}
