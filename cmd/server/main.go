package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/fitbalance/fitbalance-backend/internal/config"
	"github.com/fitbalance/fitbalance-backend/internal/database"
	"github.com/fitbalance/fitbalance-backend/internal/gemini"
	"github.com/fitbalance/fitbalance-backend/internal/handlers"
	"github.com/fitbalance/fitbalance-backend/internal/repository"
	"github.com/fitbalance/fitbalance-backend/internal/scheduler"
	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/fitbalance/fitbalance-backend/pkg/logger"
	"github.com/fitbalance/fitbalance-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewMealPlanRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	userService := services.NewUserService(userRepo)
	planService := services.NewMealPlanService(planRepo, userRepo, geminiClient)
	statsService := services.NewStatsService(userRepo, planRepo)
	notifService := services.NewNotificationService(notifRepo, userRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	planHandler := handlers.NewMealPlanHandler(planService)
	statsHandler := handlers.NewStatsHandler(statsService)
	notifHandler := handlers.NewNotificationHandler(notifService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetProfileHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateProfileHandler).Methods("PUT")

	// Meal plan routes
	planRoutes := router.PathPrefix("/plans").Subrouter()
	planRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	planRoutes.HandleFunc("/today", planHandler.GetTodayPlanHandler).Methods("GET")
	planRoutes.HandleFunc("/date/{date}", planHandler.GetPlanByDateHandler).Methods("GET")
	planRoutes.HandleFunc("/slots/{slot}/can-regenerate", planHandler.CanRegenerateHandler).Methods("GET")
	planRoutes.HandleFunc("/{id}/slots/{slot}/regenerate", planHandler.RegenerateSlotHandler).Methods("POST")
	planRoutes.HandleFunc("/{id}/slots/{slot}/completion", planHandler.SetCompletionHandler).Methods("PUT")
	planRoutes.HandleFunc("/{id}/slots/{slot}/items", planHandler.EditItemsHandler).Methods("PUT")

	// Statistics routes
	statsRoutes := router.PathPrefix("/stats").Subrouter()
	statsRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	statsRoutes.HandleFunc("/weight", statsHandler.WeightReportHandler).Methods("GET")
	statsRoutes.HandleFunc("/calories", statsHandler.CalorieReportHandler).Methods("GET")

	// Notification routes
	notifRoutes := router.PathPrefix("/notifications").Subrouter()
	notifRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notifRoutes.HandleFunc("", notifHandler.ListHandler).Methods("GET")
	notifRoutes.HandleFunc("/unread-count", notifHandler.UnreadCountHandler).Methods("GET")
	notifRoutes.HandleFunc("/read-all", notifHandler.MarkAllReadHandler).Methods("POST")
	notifRoutes.HandleFunc("/{id}", notifHandler.DeleteHandler).Methods("DELETE")

	// Daily reminder scheduler
	reminderCron := scheduler.StartReminderCron(notifService)
	defer reminderCron.Stop()

	// Enable CORS for the mobile and web clients
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Log.Infof("Server running on port %s", cfg.Port)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
