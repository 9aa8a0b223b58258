package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hdclinic/bed-scheduler/backend/internal/config"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/handler"
	"github.com/hdclinic/bed-scheduler/backend/internal/lock"
	"github.com/hdclinic/bed-scheduler/backend/internal/migrations"
	"github.com/hdclinic/bed-scheduler/backend/internal/repository"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("gagal membaca konfigurasi", "error", err)
		return
	}

	layout, err := cfg.BedLayout()
	if err != nil {
		logger.Error("layout bangsal tidak valid", "error", err)
		return
	}

	/**********************************************
	 * database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("gagal membuat pool koneksi database", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect, so ping explicitly
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("gagal terhubung ke database", "error", err)
		return
	}

	if cfg.Database.AutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Duration(cfg.Database.MigrationTimeout)*time.Second)
		defer cancelMigrate()

		if err := migrations.Up(migrateCtx, dbpool); err != nil {
			logger.Error("gagal menjalankan migrasi", "error", err)
			return
		}
		version, err := migrations.Version(migrateCtx, dbpool)
		if err != nil {
			logger.Error("gagal membaca versi skema", "error", err)
			return
		}
		logger.Info("skema database siap", "version", version)
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * initial administrator
	 **********************************************/
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("gagal membuat hash kata sandi admin awal", "error", err)
		return
	}
	initialAdmin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleAdmin,
	}
	if err := repo.CreateUser(ctx, initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
			// already there
		default:
			logger.Error("gagal membuat admin awal", "error", err)
			return
		}
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("gagal terhubung ke rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("gagal membuka channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		handler.MailQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("gagal mendeklarasikan antrean", "error", err)
		return
	}

	mailer := handler.NewAMQPMailer(ch, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("gagal terhubung ke redis", "error", err)
		return
	}

	/**********************************************
	 * scheduling engine
	 **********************************************/
	engine := scheduler.NewEngine(repo, layout,
		scheduler.WithLocker(lock.NewRedisLocker(rdb, time.Duration(cfg.Redis.GenerationLockTTL)*time.Second)),
		scheduler.WithLogger(logger),
		scheduler.WithGenerationNote(cfg.Schedule.GenerationNote),
		scheduler.WithMaxGenerationDays(cfg.Schedule.MaxGenerationDays),
	)

	/**********************************************
	 * handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, engine, mailer, rdb)
	if err != nil {
		logger.Error("gagal membuat handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server berjalan", "port", cfg.Server.Port, "beds", layout.TotalBeds())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server gagal berjalan", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("menghentikan server...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("gagal menghentikan server", slog.String("error", err.Error()))
	}
	logger.Info("server berhenti")
}
