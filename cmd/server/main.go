package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/api"
	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
	"github.com/rbkantor/eightsleep-nosub-app/internal/eight"
	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
	"github.com/rbkantor/eightsleep-nosub-app/internal/service"
	"github.com/rbkantor/eightsleep-nosub-app/internal/storage"
)

type application struct {
	logger    internal.Logger
	cfg       *config.Config
	users     *service.UserService
	profiles  *service.ProfileService
	intervals *service.IntervalService
	recorder  metrics.Recorder
}

func (a *application) Logger() internal.Logger             { return a.logger }
func (a *application) Config() *config.Config              { return a.cfg }
func (a *application) Users() *service.UserService         { return a.users }
func (a *application) Profiles() *service.ProfileService   { return a.profiles }
func (a *application) Intervals() *service.IntervalService { return a.intervals }
func (a *application) Metrics() metrics.Recorder           { return a.recorder }

var _ api.App = (*application)(nil)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var userRepo storage.UserRepository
	var profileRepo storage.ProfileRepository
	switch cfg.StorageBackend {
	case "postgres":
		userRepo, profileRepo, err = storage.NewPostgresRepositories(cfg.PostgresDSN, logger)
	default:
		if dir := filepath.Dir(cfg.UsersFile); dir != "." {
			_ = os.MkdirAll(dir, 0755)
		}
		userRepo, profileRepo, err = storage.NewFileRepositories(cfg.UsersFile, cfg.ProfilesFile, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	collector := metrics.NewCollector()
	eightClient := eight.NewClient(cfg, logger)

	userSvc := service.NewUserService(cfg, userRepo, eightClient, collector, logger)
	adjuster := service.NewEightAdjuster(userSvc, profileRepo, eightClient, logger)
	profileSvc := service.NewProfileService(profileRepo, adjuster, logger)
	intervalSvc := service.NewIntervalService(eightClient, collector, logger)

	app := &application{
		logger:    logger,
		cfg:       cfg,
		users:     userSvc,
		profiles:  profileSvc,
		intervals: intervalSvc,
		recorder:  collector,
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(collector.Handler()))

	loginLimiter := api.NewLoginRateLimiter(10, 10)
	defer loginLimiter.Stop()
	api.RegisterRoutes(r, app, loginLimiter)

	logger.Infof("Server running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
