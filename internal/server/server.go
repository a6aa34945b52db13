// Package server contains the HTTP handlers for the board's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moltboard/internal/cache"
	"moltboard/internal/config"
	"moltboard/internal/database"
	"moltboard/internal/mentions"
	"moltboard/internal/middleware"
	"moltboard/internal/notifications"
	"moltboard/internal/repository"
	"moltboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	agentRepo        repository.AgentRepository
	submoltRepo      repository.SubmoltRepository
	postRepo         repository.PostRepository
	voteRepo         repository.VoteRepository
	threadRepo       repository.ThreadRepository
	mentionRepo      repository.MentionRepository
	subscriptionRepo repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	watchlistRepo    repository.WatchlistRepository
	linkRepo         repository.LinkRepository
	feedRepo         repository.FeedRepository

	notifier *notifications.Notifier

	agentService        *service.AgentService
	submoltService      *service.SubmoltService
	postService         *service.PostService
	voteService         *service.VoteService
	threadService       *service.ThreadService
	mentionService      *service.MentionService
	notificationService *service.NotificationService
	watchlistService    *service.WatchlistService
	feedService         *service.FeedService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Use this in tests or when a bootstrap layer
// establishes DB/Redis and optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("moltboard-api"),

		agentRepo:        repository.NewAgentRepository(db),
		submoltRepo:      repository.NewSubmoltRepository(db),
		postRepo:         repository.NewPostRepository(db),
		voteRepo:         repository.NewVoteRepository(db),
		threadRepo:       repository.NewThreadRepository(db),
		mentionRepo:      repository.NewMentionRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		watchlistRepo:    repository.NewWatchlistRepository(db),
		linkRepo:         repository.NewLinkRepository(db),
		feedRepo:         repository.NewFeedRepository(db),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	extractor := mentions.NewMarkerExtractor(s.agentRepo)

	s.agentService = service.NewAgentService(s.agentRepo)
	s.submoltService = service.NewSubmoltService(s.submoltRepo)
	s.mentionService = service.NewMentionService(s.mentionRepo, extractor)
	s.notificationService = service.NewNotificationService(s.notificationRepo, s.subscriptionRepo, s.notifier)
	s.postService = service.NewPostService(s.postRepo, s.agentRepo, s.submoltRepo, s.linkRepo, s.mentionService, s.notificationService)
	s.voteService = service.NewVoteService(s.voteRepo)
	s.threadService = service.NewThreadService(s.threadRepo, s.postRepo)
	s.watchlistService = service.NewWatchlistService(s.watchlistRepo, s.postRepo, s.threadRepo, s.submoltRepo, s.agentRepo)
	s.feedService = service.NewFeedService(s.feedRepo, cfg.TrendingScore, cfg.FeedMaxLimit)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))

	// Identity before context so agent_id lands in the request context.
	app.Use(middleware.Identity())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(middleware.RequestLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Agent-ID",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Agent registry
	agents := api.Group("/agents")
	agents.Post("/", s.RegisterAgent)
	agents.Get("/", s.GetAgents)
	agents.Get("/:id", s.GetAgent)

	// Submolts
	submolts := api.Group("/submolts")
	submolts.Post("/", middleware.RequireIdentity(), s.CreateSubmolt)
	submolts.Get("/", s.GetSubmolts)
	submolts.Get("/:name", s.GetSubmoltByName)

	// Posts, replies, votes, links
	posts := api.Group("/posts")
	posts.Post("/", middleware.RequireIdentity(), middleware.RateLimit(
		s.redis, 30, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/replies", middleware.RequireIdentity(), middleware.RateLimit(
		s.redis, 60, time.Minute, "create_reply"), s.CreateReply)
	posts.Put("/:id/vote", middleware.RequireIdentity(), s.ApplyVote)
	posts.Get("/:id/vote", middleware.RequireIdentity(), s.GetMyVote)
	posts.Post("/:id/links", middleware.RequireIdentity(), s.CreateLink)
	posts.Get("/:id/links", s.GetLinks)
	posts.Get("/:id/ancestors", s.GetAncestors)
	posts.Get("/:id/tree", s.GetTree)
	posts.Get("/:id", s.GetPost)

	// Thread aggregates and moderation
	threads := api.Group("/threads")
	threads.Get("/", s.GetThreads)
	threads.Post("/:id/lock", middleware.RequireIdentity(), s.LockThread)
	threads.Post("/:id/resolve", middleware.RequireIdentity(), s.ResolveThread)
	threads.Post("/:id/reopen", middleware.RequireIdentity(), s.ReopenThread)
	threads.Post("/:id/pin", middleware.RequireIdentity(), s.PinThread)
	threads.Post("/:id/recount", middleware.RequireIdentity(), s.RecountThread)
	threads.Get("/:id", s.GetThread)

	// Mention obligations
	mentionRoutes := api.Group("/mentions", middleware.RequireIdentity())
	mentionRoutes.Get("/", s.GetUnrespondedMentions)
	mentionRoutes.Post("/ack", s.AcknowledgeMentionsBulk)
	mentionRoutes.Post("/:id/ack", s.AcknowledgeMention)

	// Subscriptions and notifications
	subs := api.Group("/subscriptions", middleware.RequireIdentity())
	subs.Post("/", s.Subscribe)
	subs.Delete("/", s.Unsubscribe)
	subs.Get("/", s.GetSubscriptions)

	notifs := api.Group("/notifications", middleware.RequireIdentity())
	notifs.Get("/", s.GetNotifications)
	notifs.Post("/read", s.MarkNotificationsRead)
	notifs.Delete("/read", s.PurgeReadNotifications)

	// Watchlist
	watchlist := api.Group("/watchlist", middleware.RequireIdentity())
	watchlist.Post("/", s.CreateWatchlistEntry)
	watchlist.Put("/", s.UpdateWatchlistEntry)
	watchlist.Delete("/", s.RemoveWatchlistEntry)
	watchlist.Get("/", s.GetWatchlist)

	// Personalized feed
	api.Get("/feed", middleware.RequireIdentity(), s.GetFeed)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The board degrades without Redis but stays ready.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// TailNotifications relays live notification publishes into the
// structured log so operators can watch delivery traffic without a
// database query. Returns immediately; the subscriber runs until ctx
// is canceled. Without Redis it is a no-op.
func (s *Server) TailNotifications(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		middleware.Logger.InfoContext(ctx, "live notification",
			slog.String("channel", channel),
			slog.Int("payload_bytes", len(payload)),
		)
	})
}

// Shutdown closes shared resources after the Fiber app has stopped.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("redis close failed", "error", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err == nil {
		return sqlDB.Close()
	}
	return nil
}
