package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/config"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/hdclinic/bed-scheduler/backend/internal/migrations"
	"github.com/hdclinic/bed-scheduler/backend/internal/repository"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
	"github.com/hdclinic/bed-scheduler/backend/internal/seed"
	"github.com/hdclinic/bed-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var start, end string
	var shift string
	var capacity int

	flag.IntVar(&op, "op", 0, "operasi (1: staf acak, 2: pasien acak, 3: pasien dari CSV, 4: jadwal otomatis)")
	flag.IntVar(&n, "n", 5, "jumlah data yang dibuat")
	flag.StringVar(&file, "file", seed.DefaultPatientsFile, "berkas CSV data pasien")
	flag.StringVar(&start, "start", "", "tanggal mulai jadwal (YYYY-MM-DD)")
	flag.StringVar(&end, "end", "", "tanggal akhir jadwal (YYYY-MM-DD)")
	flag.StringVar(&shift, "shift", scheduler.ShiftAll, "shift (pagi, siang, sore, malam, all)")
	flag.IntVar(&capacity, "capacity", 4, "jumlah pasien per shift")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("gagal membaca konfigurasi", slog.String("error", err.Error()))
		os.Exit(1)
	}

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
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("operasi belum ditentukan")
	case 1:
		if n <= 0 {
			logger.Error("jumlah staf tidak valid")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				logger.Error("gagal membuat staf acak", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(context.Background(), user); err != nil {
				logger.Error("gagal menyimpan staf", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		logger.Info("staf berhasil dibuat", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			logger.Error("jumlah pasien tidak valid")
			return
		}

		patients := make([]*domain.Patient, 0, n)
		for i := 0; i < n; i++ {
			patients = append(patients, utils.GenerateRandomPatient())
		}

		inserted, skipped, err := seed.SeedPatients(context.Background(), repo, patients)
		if err != nil {
			logger.Error("gagal menyimpan pasien", slog.String("error", err.Error()))
		}
		logger.Info("pasien acak berhasil dibuat", slog.Int("count", inserted), slog.Int("skipped", skipped))
	case 3:
		if err := seed.SeedPatientsFromFile(context.Background(), repo, file); err != nil {
			logger.Error("gagal memuat data pasien", slog.String("file", file), slog.String("error", err.Error()))
		}
	case 4:
		startDate, err := civil.ParseDate(start)
		if err != nil {
			logger.Error("tanggal mulai tidak valid", slog.String("start", start))
			return
		}
		endDate, err := civil.ParseDate(end)
		if err != nil {
			logger.Error("tanggal akhir tidak valid", slog.String("end", end))
			return
		}

		layout, err := cfg.BedLayout()
		if err != nil {
			logger.Error("layout bangsal tidak valid", slog.String("error", err.Error()))
			return
		}

		engine := scheduler.NewEngine(repo, layout,
			scheduler.WithLogger(logger),
			scheduler.WithGenerationNote(cfg.Schedule.GenerationNote),
			scheduler.WithMaxGenerationDays(cfg.Schedule.MaxGenerationDays),
		)

		result, err := engine.Generate(context.Background(), scheduler.GenerationParams{
			StartDate:        startDate,
			EndDate:          endDate,
			Shift:            shift,
			PerShiftCapacity: capacity,
		})
		if err != nil {
			logger.Error("gagal membuat jadwal otomatis", slog.String("error", err.Error()))
			return
		}

		logger.Info("jadwal otomatis berhasil dibuat", slog.String("batch", result.BatchID.String()), slog.Int("count", result.Total))
	default:
		logger.Error("operasi tidak dikenal", slog.Int("op", op))
	}
}
