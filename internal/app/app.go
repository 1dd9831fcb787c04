package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HeChing/Capacitapp/internal/app/server"
	"github.com/HeChing/Capacitapp/internal/config"
	"github.com/HeChing/Capacitapp/internal/delivery/http"
	"github.com/HeChing/Capacitapp/internal/service"
	"github.com/HeChing/Capacitapp/internal/service/access"
	"github.com/HeChing/Capacitapp/internal/service/assessment"
	"github.com/HeChing/Capacitapp/internal/service/auth"
	"github.com/HeChing/Capacitapp/internal/service/course"
	"github.com/HeChing/Capacitapp/internal/service/enrollment"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/HeChing/Capacitapp/internal/service/progress"
	"github.com/HeChing/Capacitapp/internal/storage/elastic"
	"github.com/HeChing/Capacitapp/internal/storage/minio_storage"
	"github.com/HeChing/Capacitapp/internal/storage/postgres"
	"github.com/HeChing/Capacitapp/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error preparing search index", err)
	}

	minioClient, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	mediaStorage, err := minio_storage.NewCourseMediaStorage(minioClient, cfg.Minio.Bucket, cfg.Minio.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing media bucket", err)
	}

	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	userRepo := postgres.NewUserPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "//", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := auth.NewAuthService(log, jwtManager, userRepo, tokenRepo)
	resolver := identity.NewResolver(log, userRepo)
	enrollmentService := enrollment.NewService(log, courseRepo, enrollmentRepo)
	progressTracker := progress.NewTracker(log, enrollmentRepo, courseRepo)
	assessmentEngine := assessment.NewEngine(log, enrollmentRepo, courseRepo, progressTracker,
		cfg.Learning.QuizPassScore, cfg.Learning.RetractOnRestart)
	courseManagement := course.NewManagementService(log, courseRepo, searchRepo, mediaStorage)
	catalog := course.NewCatalogService(log, courseRepo, searchRepo, enrollmentRepo, mediaStorage)
	reports := course.NewReportsService(log, courseRepo)

	u := service.Collection{
		AuthService:       authService,
		Resolver:          resolver,
		EnrollmentService: enrollmentService,
		ProgressTracker:   progressTracker,
		AssessmentEngine:  assessmentEngine,
		CourseManagement:  courseManagement,
		Catalog:           catalog,
		Reports:           reports,
	}

	gate := access.NewGate(nil)

	r := http.InitRoutes(log, u, gate, http.Repos{
		Enrollments: enrollmentRepo,
		Courses:     courseRepo,
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server stopped", err)
	}
	err = srv.Shutdown()
	if err != nil {
		log.ErrorErr("shutdown failed", err)
	}
}
