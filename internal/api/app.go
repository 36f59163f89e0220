package api

import (
	"github.com/rbkantor/eightsleep-nosub-app/internal"
	"github.com/rbkantor/eightsleep-nosub-app/internal/config"
	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
	"github.com/rbkantor/eightsleep-nosub-app/internal/service"
)

type App interface {
	Logger() internal.Logger
	Config() *config.Config
	Users() *service.UserService
	Profiles() *service.ProfileService
	Intervals() *service.IntervalService
	Metrics() metrics.Recorder
}
