package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/LovationAdmin/calendar-api/config"
	"github.com/LovationAdmin/calendar-api/handlers"
	"github.com/LovationAdmin/calendar-api/middleware"
	"github.com/LovationAdmin/calendar-api/routes"
	"github.com/LovationAdmin/calendar-api/services"
	"github.com/LovationAdmin/calendar-api/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	go scheduleInviteCleaning(db)

	wsHandler := handlers.NewWSHandler() // Initialize WS here

	st := store.NewPostgres(db)
	emailService := services.NewEmailService(cfg.ResendAPIKey, cfg.FromEmail, cfg.FrontendURL)

	calendarService := services.NewCalendarService(st, wsHandler)
	membershipService := services.NewMembershipService(st, wsHandler)
	eventService := services.NewEventService(st, wsHandler)
	invitationService := services.NewInvitationService(st, wsHandler, emailService)

	router := gin.Default()

	allowedOrigins := []string{
		cfg.FrontendURL,
		"https://calendrierfamille.com",
		"https://www.calendrierfamille.com",
	}

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, st, calendarService)
		routes.SetupPublicInviteRoutes(v1, invitationService)
		v1.GET("/ws/calendars/:id", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupCalendarRoutes(protected, calendarService, membershipService, eventService)
			routes.SetupInvitationRoutes(protected, invitationService)
			routes.SetupUserRoutes(protected, st)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func scheduleInviteCleaning(db *sql.DB) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	cleanExpiredInvites(db)
	for range ticker.C {
		cleanExpiredInvites(db)
	}
}

func cleanExpiredInvites(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, table := range []string{"calendar_email_invites", "event_email_invites"} {
		result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE expires_at IS NOT NULL AND expires_at < NOW() - INTERVAL '30 days'`)
		if err != nil {
			log.Printf("❌ Invite cleanup failed for %s: %v", table, err)
			continue
		}
		rows, _ := result.RowsAffected()
		if rows > 0 {
			log.Printf("🧹 Cleaned %d expired invites from %s", rows, table)
		}
	}
}
