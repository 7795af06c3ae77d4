package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/dmtshikala/academia/apps/api/echo"
	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/user"
	emailsvc "github.com/dmtshikala/academia/services/email"
	logsvc "github.com/dmtshikala/academia/services/logger"
	"github.com/dmtshikala/academia/storage/cache"
	"github.com/dmtshikala/academia/storage/database"
	inmemdb "github.com/dmtshikala/academia/storage/database/inmem"
	sqlxrepos "github.com/dmtshikala/academia/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = core.NewStdLogger(std)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	if err := run(conf, logger); err != nil {
		logger.Fatal(fmt.Sprintf("running server: %v", err), err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// =========================================================================
	// Set up storage

	var usrRepo user.Repository
	var acadRepo academic.Repository
	var statsCache academic.Cache

	if conf.Database.Engine == "inmem" {
		db, err := inmemdb.Open()
		if err != nil {
			return err
		}
		usrRepo = inmemdb.NewUserRepository(db)
		acadRepo = inmemdb.NewAcademicRepository(db)
		statsCache = cache.NewMemoryCache()
	} else {
		if err := database.CreateIfNotExist(conf); err != nil {
			return err
		}
		db, err := database.Open(conf)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err = database.Migrate(db); err != nil {
			return err
		}
		usrRepo = sqlxrepos.NewUserRepository(db)
		acadRepo = sqlxrepos.NewAcademicRepository(db)

		redisCache, err := cache.NewRedisCache(conf.Redis, logger)
		if err != nil {
			logger.Warn(fmt.Sprintf("redis unavailable, falling back to memory cache: %v", err))
			statsCache = cache.NewMemoryCache()
		} else {
			defer func() { _ = redisCache.Close() }()
			statsCache = redisCache
		}
	}

	// =========================================================================
	// Set up services

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	acadSvc := academic.NewService(acadRepo, statsCache, logger)

	// =========================================================================
	// Start API service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Addr:        conf.Server.Address(),
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		AcademicSvc: acadSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		return err

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			return server.Close()
		}
	}
	return nil
}
