package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/deadlinr/backend/conf"
	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/feedback"
	"github.com/deadlinr/backend/http"
	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/moderation"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/ratelimit"
	"github.com/deadlinr/backend/s3bucket"
	"github.com/deadlinr/backend/signedurl"
	"github.com/deadlinr/backend/subm"
	"github.com/deadlinr/backend/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := conf.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, level, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg conf.Config, level slog.Level, log *slog.Logger) error {
	connStr, err := cfg.ConnString(ctx)
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return err
	}
	defer pool.Close()

	awsCfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return err
	}
	bucket := s3bucket.NewS3Bucket(awsCfg, cfg.AWS.S3Bucket)

	var mailer mail.Sender = mail.NewConsoleSender(log)
	if cfg.Mail.SendgridKey != "" {
		mailer = mail.NewSendgridSender(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	} else {
		log.Warn("no sendgrid key configured, emails are only logged")
	}

	users := user.NewUserSrvc(pool, mailer)
	users.VerifyURL = cfg.AppURL + "/verify?token="

	rels := moderation.NewPgRelRepo(pool)
	deadlines := deadline.NewDeadlineSrvc(deadline.NewPgDeadlineRepo(pool), rels.ModeratorOf)

	var attempts ratelimit.AttemptStore = ratelimit.NewPgAttemptStore(pool)
	if cfg.RateLimit.Store == conf.RateLimitDynamoDb {
		attempts = ratelimit.NewDynamoDbAttemptStore(dynamodb.NewFromConfig(awsCfg), cfg.RateLimit.DynamoTable)
	}

	var pub notif.Publisher
	if cfg.AWS.NotifQueueURL != "" {
		pub = notif.NewSqsPublisher(sqs.NewFromConfig(awsCfg), cfg.AWS.NotifQueueURL)
	}
	notifs := notif.NewNotifSrvc(notif.NewPgRepo(pool), pub)

	submRepo := subm.NewPgSubmRepo(pool)
	subms := subm.NewSubmSrvc(submRepo, deadlines, ratelimit.NewLimiter(attempts), rels.ModeratorOf, bucket, notifs)
	mods := moderation.NewModerationSrvc(rels, users, submRepo, notifs)

	refresher := signedurl.NewRefresher(bucket, log)
	defer refresher.Close()

	server := http.NewHttpServer(http.Services{
		Users:      users,
		Deadlines:  deadlines,
		Subms:      subms,
		Moderation: mods,
		Notifs:     notifs,
		Feedback:   feedback.NewFeedbackSrvc(feedback.NewPgRepo(pool)),
		ImageURLs:  refresher,
	}, http.Options{
		JwtKey:      []byte(cfg.JwtKey),
		CorsOrigins: cfg.CorsOrigins,
		LogLevel:    level,
		Env:         os.Getenv("ENV"),
		Version:     version,
	})

	log.Info("starting server", "address", cfg.HttpAddr, "version", version)
	return server.Start(ctx, cfg.HttpAddr)
}
