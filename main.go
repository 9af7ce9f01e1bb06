package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/runcoach/backend/internal/client"
	"github.com/runcoach/backend/internal/config"
	"github.com/runcoach/backend/internal/db"
	"github.com/runcoach/backend/internal/handler"
	"github.com/runcoach/backend/internal/service"
)

func main() {
	// .env is optional; deployed environments inject real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := &db.Postgres{Pool: pool}
	if err := repo.EnsureAuthSchema(ctx); err != nil {
		log.Fatalf("auth schema: %v", err)
	}
	if err := repo.EnsurePlanSchema(ctx); err != nil {
		log.Fatalf("plan schema: %v", err)
	}
	if err := repo.EnsureWorkoutSchema(ctx); err != nil {
		log.Fatalf("workout schema: %v", err)
	}
	if err := repo.EnsureTelegramSchema(ctx); err != nil {
		log.Fatalf("telegram schema: %v", err)
	}

	mailer := client.NewMailer(cfg.SMTP)
	if !mailer.Configured() {
		log.Printf("SMTP not configured, login codes will be logged")
	}

	authSvc, err := service.NewAuthService(repo, mailer, cfg.Auth)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	var (
		planGen service.PlanGenerator
		vision  service.VisionClient
		history service.HistoryProvider
		indexer service.WorkoutIndexer
	)
	coach, err := client.NewCoachClient(cfg.Coach)
	if err != nil {
		log.Printf("coach client disabled: %v", err)
	} else {
		planGen = coach
		vision = coach
		if err := repo.EnsureEmbeddingSchema(ctx); err != nil {
			log.Printf("embedding schema unavailable, plan prompts lose history context: %v", err)
		} else {
			embSvc := service.NewEmbeddingService(repo, coach)
			history = embSvc
			indexer = embSvc
		}
	}

	workoutSvc := service.NewWorkoutService(repo, indexer)
	planSvc := service.NewPlanService(repo, planGen, history)

	bot := client.NewTelegramClient(cfg.Telegram)
	if !bot.Configured() {
		log.Printf("Telegram bot not configured, webhook disabled")
	}
	telegramSvc := service.NewTelegramService(repo, bot, vision, workoutSvc, cfg.Telegram, cfg.Auth.LinkTokenSecret)

	authHandler := handler.NewAuthHandler(authSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	workoutHandler := handler.NewWorkoutHandler(workoutSvc)
	telegramHandler := handler.NewTelegramHandler(telegramSvc)

	r := gin.Default()

	if cfg.App.AllowedOrigins != "" {
		r.Use(handler.CORSMiddleware(strings.Split(cfg.App.AllowedOrigins, ","), true))
	}

	r.GET("/", handler.Root)
	r.GET("/ping", handler.Ping)
	r.GET("/openapi.json", handler.OpenAPIDoc)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/request-code", authHandler.RequestCode)
		api.POST("/auth/verify", authHandler.Verify)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/telegram/webhook", telegramHandler.Webhook)
	}

	protected := api.Group("/")
	protected.Use(handler.SessionMiddleware(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/plans", planHandler.CreatePlan)
		protected.GET("/plans", planHandler.GetPlans)
		protected.GET("/plans/:id", planHandler.GetPlanDetail)
		protected.GET("/workouts", workoutHandler.ListWorkouts)
		protected.GET("/workouts/:id", workoutHandler.GetWorkout)
		protected.POST("/workouts", workoutHandler.CreateWorkout)
		protected.PATCH("/workouts/:id", workoutHandler.UpdateWorkout)
		protected.POST("/telegram/link", telegramHandler.CreateLink)
	}

	if err := r.Run(cfg.App.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
