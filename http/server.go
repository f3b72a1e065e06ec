// Package http exposes the services over a JSON HTTP API.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/feedback"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/moderation"
	"github.com/deadlinr/backend/notif"
	"github.com/deadlinr/backend/signedurl"
	"github.com/deadlinr/backend/subm"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
	userhttp "github.com/deadlinr/backend/user/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

type Services struct {
	Users      *user.UserSrvc
	Deadlines  *deadline.DeadlineSrvc
	Subms      *subm.SubmSrvc
	Moderation *moderation.ModerationSrvc
	Notifs     *notif.NotifSrvc
	Feedback   *feedback.FeedbackSrvc
	ImageURLs  *signedurl.Refresher
}

type Options struct {
	JwtKey      []byte
	CorsOrigins []string
	LogLevel    slog.Level
	// Env and Version tag every request log line.
	Env     string
	Version string
}

type HttpServer struct {
	deadlineSrvc *deadline.DeadlineSrvc
	submSrvc     *subm.SubmSrvc
	modSrvc      *moderation.ModerationSrvc
	notifSrvc    *notif.NotifSrvc
	feedbackSrvc *feedback.FeedbackSrvc
	imageURLs    *signedurl.Refresher

	router *chi.Mux
	stats  *statsLogger

	Now       func() time.Time
	NewTicker deadline.TickerFunc // for countdown streams; nil means real
}

func NewHttpServer(srvcs Services, opts Options) *HttpServer {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("deadlinr", httplog.Options{
		LogLevel:         opts.LogLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": opts.Version,
			"env":     opts.Env,
		},
	})

	server := &HttpServer{
		deadlineSrvc: srvcs.Deadlines,
		submSrvc:     srvcs.Subms,
		modSrvc:      srvcs.Moderation,
		notifSrvc:    srvcs.Notifs,
		feedbackSrvc: srvcs.Feedback,
		imageURLs:    srvcs.ImageURLs,
		router:       router,
		stats:        newStatsLogger(reqLogger.Logger, 5*time.Minute),
		Now:          time.Now,
	}

	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(server.stats.middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(opts.JwtKey))
	router.Use(tagSessionUser)

	userhttp.NewUserHttpHandler(srvcs.Users, opts.JwtKey).RegisterRoutes(router)
	server.routes()

	return server
}

func (s *HttpServer) routes() {
	r := s.router

	r.Get("/deadlines", s.listDeadlines)
	r.Get("/deadlines/summary", s.deadlineSummary)
	r.Post("/deadlines", s.createDeadline)
	r.Get("/deadlines/{deadlineID}", s.getDeadline)
	r.Put("/deadlines/{deadlineID}", s.updateDeadline)
	r.Get("/deadlines/{deadlineID}/countdown", s.streamCountdown)
	r.Post("/deadlines/{deadlineID}/submissions", s.uploadProof)
	r.Get("/deadlines/{deadlineID}/submissions", s.listSubmissions)

	r.Get("/submissions/{submID}", s.getSubmission)
	r.Post("/submissions/{submID}/review", s.reviewSubmission)
	r.Get("/submissions/{submID}/image", s.getImageURLs)
	r.Post("/submissions/{submID}/image/watch", s.watchImage)
	r.Delete("/submissions/{submID}/image/watch", s.unwatchImage)

	r.Get("/moderation/queue", s.moderationQueue)
	r.Get("/moderation/relationship", s.getRelationship)
	r.Post("/moderation/relationship", s.assignModerator)
	r.Delete("/moderation/relationship", s.revokeModerator)

	r.Get("/notifications", s.listNotifications)
	r.Post("/notifications/{notifID}/read", s.markNotificationRead)

	r.Post("/feedback", s.submitFeedback)
	r.Post("/subscribers", s.subscribe)
}

func (s *HttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves on address until ctx is done, then shuts down gracefully.
func (s *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.stats.run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func tagSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := auth.SessionFrom(r.Context()); ok {
			r = r.WithContext(logger.WithUser(r.Context(), sess.UserUUID.String()))
		}
		next.ServeHTTP(w, r)
	})
}
