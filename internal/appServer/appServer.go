package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/eventhub/config"
	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/database/memory"
	repository "github.com/ds124wfegd/eventhub/internal/database/postgres"
	eventcache "github.com/ds124wfegd/eventhub/internal/database/redis"
	"github.com/ds124wfegd/eventhub/internal/service"
	"github.com/ds124wfegd/eventhub/internal/transport"
	"github.com/ds124wfegd/eventhub/internal/worker"

	"github.com/ds124wfegd/eventhub/pkg/jwt"
	"github.com/ds124wfegd/eventhub/pkg/kafka"
	"github.com/ds124wfegd/eventhub/pkg/mail"
	"github.com/ds124wfegd/eventhub/pkg/postgres"
	"github.com/ds124wfegd/eventhub/pkg/rabbitMQ"
	"github.com/ds124wfegd/eventhub/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func newRepositories(ctx context.Context, cfg *config.Config) (*database.Repositories, func()) {
	if cfg.Database.Driver == "memory" {
		logrus.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositories(memory.NewStore()), func() {}
	}

	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	return repository.NewRepositories(db), func() { db.Close() }
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeDB := newRepositories(ctx, cfg)
	defer closeDB()

	smtpSender := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		Enabled:  cfg.Email.Enabled,
	})

	deps := service.Deps{
		Repos:    repos,
		Mailer:   smtpSender,
		Sessions: jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration),
		Issuer: service.IssuerConfig{
			TokenTTL:          cfg.Auth.TokenTTL,
			OtpTTL:            cfg.Auth.OtpTTL,
			OtpResendCooldown: cfg.Auth.OtpResendCooldown,
			OtpLength:         cfg.Auth.OtpLength,
		},
		FrontendURL: cfg.Email.FrontendURL,
	}

	// Mail outbox
	if cfg.RabbitMQ.Enabled {
		queue, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
			URL:        cfg.RabbitMQ.URL,
			QueueName:  cfg.RabbitMQ.QueueName,
			RetryCount: cfg.RabbitMQ.RetryCount,
		})
		if err != nil {
			logrus.Errorf("Failed to connect to RabbitMQ: %v. Sending mail synchronously...", err)
		} else {
			defer queue.Close()
			deps.Mailer = service.NewQueueMailer(queue)
			if err := worker.NewMailWorker(queue, smtpSender).Start(ctx); err != nil {
				logrus.Errorf("Mail worker error: %v", err)
			}
		}
	}

	// Booking events
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		deps.Publisher = service.NewKafkaPublisher(producer)
	}

	// Event cache
	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to connect to Redis: %v. Event cache disabled", err)
		} else {
			defer client.Close()
			deps.Cache = eventcache.NewEventCache(client, cfg.Cache.EventTTL)
		}
	}

	services, issuer := service.NewServices(deps)

	cleanupWorker := worker.NewCleanupWorker(
		issuer,
		cfg.Worker.CleanupInterval,
		cfg.Worker.OtpRetention,
		cfg.Worker.TokenRetention,
	)
	go cleanupWorker.Start(ctx)

	if cfg.Server.Mode == "release" || cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.InitRoutes(transport.NewHandlers(services), services.Auth, cfg.Server.RequestTimeout)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
