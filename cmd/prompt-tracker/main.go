package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prompt-tracker/internal/config"
	"prompt-tracker/internal/database"
	httpapi "prompt-tracker/internal/http"
	"prompt-tracker/internal/logger"
	"prompt-tracker/internal/repository"
	"prompt-tracker/internal/service"
	"prompt-tracker/internal/store"

	"prompt-tracker/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "prompt-tracker")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	devices := store.NewRedisDeviceSeenStore(redisClient, time.Duration(cfg.DeviceSeenTTLSeconds)*time.Second)

	// Repositories: Postgres when available, in-memory fallback otherwise so
	// the API still answers during local dev.
	var db *sql.DB
	var promptsRepo repository.PromptsRepository
	var auditRepo repository.AuditRepository
	var individualsRepo repository.IndividualsRepository
	var promptTypesRepo repository.PromptTypesRepository
	var usersRepo repository.UsersRepository

	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for prompt-tracker")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	if db != nil {
		promptsRepo = repository.NewPostgresPromptsRepository(db)
		auditRepo = repository.NewPostgresAuditRepository(db)
		individualsRepo = repository.NewPostgresIndividualsRepository(db)
		promptTypesRepo = repository.NewPostgresPromptTypesRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
	} else {
		memIndividuals := repository.NewMemoryIndividualsRepo()
		memTypes := repository.NewMemoryPromptTypesRepo()
		memUsers := repository.NewMemoryUsersRepo()
		promptsRepo = repository.NewMemoryPromptsRepo()
		auditRepo = repository.NewMemoryAuditRepo(memUsers)
		individualsRepo = memIndividuals
		promptTypesRepo = memTypes
		usersRepo = memUsers

		// Dev bootstrap: minimal roster so the UI pages have data without a DB.
		if os.Getenv("SEED_DEV_ROSTER") != "false" {
			seedDevRoster(memIndividuals, memTypes, memUsers)
			log.Info("seeded in-memory dev roster")
		}
	}

	audit := service.NewAuditRecorder(auditRepo, promptsRepo, individualsRepo, promptTypesRepo, log)
	prompts := service.NewPromptService(
		promptsRepo, individualsRepo, promptTypesRepo, usersRepo,
		audit, devices, log,
	)
	reports := service.NewReportService(promptsRepo, individualsRepo, promptTypesRepo, usersRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterPromptRoutes(httpapi.NewPromptHandler(prompts, log))
	router.RegisterReportRoutes(httpapi.NewReportHandler(reports, log))
	router.RegisterActivityRoutes(httpapi.NewActivityHandler(audit, log))
	router.RegisterRosterRoutes(
		httpapi.NewIndividualHandler(individualsRepo, log),
		httpapi.NewPromptTypeHandler(promptTypesRepo, log),
	)
	router.RegisterDeviceRoutes(httpapi.NewDeviceHandler(devices, log))

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.RequestLogging(log, router), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server exited", zap.Error(err))
		}
	}

	// 独立于信号的超时上下文：保证 5 秒排空窗口真实生效
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

func seedDevRoster(
	individuals *repository.MemoryIndividualsRepo,
	types *repository.MemoryPromptTypesRepo,
	users *repository.MemoryUsersRepo,
) {
	users.AddUser(domain.User{
		Username:    "officer1",
		FirstName:   "Dana",
		LastName:    "Reyes",
		BadgeNumber: "B-1042",
		Role:        domain.RoleOfficer,
		FacilityID:  1,
	})
	individuals.AddIndividual(domain.Individual{
		CdcrNumber:  "A12345",
		FirstName:   "John",
		LastName:    "Doe",
		FacilityID:  1,
		HousingUnit: "A-1",
	})
	types.AddPromptType(domain.PromptType{Name: "Meal", Description: "Notification for meal times and food service", Category: "daily"})
	types.AddPromptType(domain.PromptType{Name: "Yard", Description: "Notification for yard time and outdoor activities", Category: "daily"})
	types.AddPromptType(domain.PromptType{Name: "Medical Appointments", Description: "Notification for medical appointments and healthcare services", Category: "appointments"})
}
