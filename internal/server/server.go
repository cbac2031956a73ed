package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"courtclub/internal/auth"
	"courtclub/internal/booking"
	"courtclub/internal/challenge"
	"courtclub/internal/clock"
	"courtclub/internal/config"
	"courtclub/internal/court"
	"courtclub/internal/member"
	"courtclub/internal/notify"
	"courtclub/internal/tournament"
	"courtclub/internal/wallet"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	clk := clock.New()

	memberRepo := member.NewRepository(db)
	memberService := member.NewService(memberRepo, cfg.JWTSecret)
	memberHandler := member.NewHandler(memberService)

	walletService := wallet.NewService(db)
	walletHandler := wallet.NewHandler(walletService)

	courtRepo := court.NewRepository(db)
	courtHandler := court.NewHandler(courtRepo)

	bookingRepo := booking.NewRepository(db)
	bookingService := booking.NewService(db, bookingRepo, courtRepo, walletService, notifier, clk)
	bookingHandler := booking.NewHandler(bookingService)

	challengeRepo := challenge.NewRepository(db)
	challengeService := challenge.NewService(db, challengeRepo, memberRepo, walletService, notifier, clk)
	challengeHandler := challenge.NewHandler(challengeService)

	tournamentRepo := tournament.NewRepository(db)
	tournamentService := tournament.NewService(db, tournamentRepo, walletService, notifier)
	tournamentHandler := tournament.NewHandler(tournamentService)

	notifyHandler := notify.NewHandler(notifier)

	public := router.Group("/auth")
	{
		public.POST("/register", memberHandler.Register)
		public.POST("/login", memberHandler.Login)
		public.POST("/refresh", memberHandler.Refresh)
	}

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", memberHandler.GetMe)
		protected.POST("/me/password", memberHandler.ChangePassword)

		protected.GET("/wallet", walletHandler.GetBalance)
		protected.POST("/wallet/deposit", walletHandler.Deposit)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.GET("/courts", courtHandler.ListCourts)
		protected.GET("/courts/:id", courtHandler.GetCourt)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.POST("/bookings/recurring", bookingHandler.CreateRecurringBooking)
		protected.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)
		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.GET("/bookings/calendar", bookingHandler.Calendar)

		protected.POST("/challenges", challengeHandler.Create)
		protected.GET("/challenges", challengeHandler.ListMine)
		protected.GET("/challenges/incoming", challengeHandler.ListIncoming)
		protected.GET("/challenges/:id", challengeHandler.Get)
		protected.POST("/challenges/:id/accept", challengeHandler.Accept)
		protected.POST("/challenges/:id/reject", challengeHandler.Reject)
		protected.POST("/challenges/:id/cancel", challengeHandler.Cancel)
		protected.POST("/challenges/:id/complete", challengeHandler.Complete)

		protected.GET("/tournaments", tournamentHandler.List)
		protected.GET("/tournaments/:id", tournamentHandler.Get)
		protected.GET("/tournaments/:id/participants", tournamentHandler.Participants)
		protected.POST("/tournaments/:id/join", tournamentHandler.Join)

		protected.GET("/notifications", notifyHandler.List)
		protected.POST("/notifications/:id/read", notifyHandler.MarkRead)
		protected.POST("/notifications/read-all", notifyHandler.MarkAllRead)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/courts", courtHandler.CreateCourt)
		admin.POST("/tournaments", tournamentHandler.Create)
		admin.PATCH("/tournaments/:id/status", tournamentHandler.UpdateStatus)
		admin.GET("/bookings", bookingHandler.ListAllBookings)
		admin.GET("/wallet/transactions", walletHandler.ListAllTransactions)
		admin.POST("/members/:memberID/deactivate", memberHandler.Deactivate)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifier,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
