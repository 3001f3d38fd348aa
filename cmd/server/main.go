package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/documents_api/internal/config"
	"github.com/Skotchmaster/documents_api/internal/db"
	"github.com/Skotchmaster/documents_api/internal/es"
	"github.com/Skotchmaster/documents_api/internal/hash"
	"github.com/Skotchmaster/documents_api/internal/httpserver"
	"github.com/Skotchmaster/documents_api/internal/logging"
	"github.com/Skotchmaster/documents_api/internal/middleware/validate"
	"github.com/Skotchmaster/documents_api/internal/mykafka"
	"github.com/Skotchmaster/documents_api/internal/repo"
	"github.com/Skotchmaster/documents_api/internal/repo/gormrepo"
	mongorepo "github.com/Skotchmaster/documents_api/internal/repo/mongo"
	"github.com/Skotchmaster/documents_api/internal/service"
)

type stores struct {
	documents repo.DocumentRepo
	users     repo.UserRepo
	ready     func(ctx context.Context) error
	close     func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DBDriver == config.DriverMongo {
		conn, err := db.Connect(ctx, db.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return &stores{
			documents: mongorepo.NewDocumentRepo(conn.Collection(repo.DocumentsCollection)),
			users:     mongorepo.NewUserRepo(conn.Collection(repo.UsersCollection)),
			ready:     conn.Ping,
			close:     conn.Close,
		}, nil
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	r := gormrepo.New(gdb)
	return &stores{
		documents: r.Documents(),
		users:     r.Users(),
		ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error { return db.Close(gdb) },
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		f, err := logging.OpenFile(cfg.LogDir, cfg.Env)
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := logging.New(cfg.LogLevel, out).With("service", cfg.AppName, "env", cfg.Env)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("db_open_failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	passwords, err := hash.NewPolicy(cfg.PasswordPolicy)
	if err != nil {
		logger.Error("password_policy_failed", "error", err)
		os.Exit(1)
	}

	docSvc := &service.DocumentService{Repo: st.documents}
	authSvc := &service.AuthService{
		Users:     st.users,
		Passwords: passwords,
		Secret:    cfg.JWTSecret,
		TTL:       cfg.JWTExpiration,
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		docSvc.Events = producer
		authSvc.Events = producer
	}

	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			logger.Warn("es_unavailable", "error", err)
		} else {
			docSvc.Index = es.NewIndex(client, cfg.ESIndex)
		}
	}

	e := httpserver.NewEcho(logger, cfg.CORSOrigins)
	httpserver.Register(e, &httpserver.Deps{
		DocumentHandler: &httpserver.DocumentHTTP{Svc: docSvc},
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		Validate:        &validate.Middleware{Documents: st.documents, Users: st.users},
		JWTSecret:       cfg.JWTSecret,
		Ready:           st.ready,
		SearchEnabled:   docSvc.Index != nil,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_error", "error", err)
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}
