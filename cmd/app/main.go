package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"kindred/cmd/fx/account_fx"
	"kindred/cmd/fx/ai_fx"
	"kindred/cmd/fx/db_fx"
	"kindred/cmd/fx/discover_fx"
	"kindred/cmd/fx/tags_fx"
	"kindred/cmd/fx/thoughts_fx"
	"kindred/internal/api/controllers"
	"kindred/internal/infra"
	"kindred/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	app := fx.New(
		db_fx.Module,
		ai_fx.Module,
		account_fx.Module,
		tags_fx.Module,
		thoughts_fx.Module,
		discover_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(Migrate),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func Migrate(db *gorm.DB) error {
	return infra.AutoMigrate(db)
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			infra.ClosePostgresql(db)
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	tagsController *controllers.TagController,
	thoughtController *controllers.ThoughtController,
	discoverController *controllers.DiscoverController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, accountController, tagsController, thoughtController, discoverController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	tagsController *controllers.TagController,
	thoughtController *controllers.ThoughtController,
	discoverController *controllers.DiscoverController) {

	authGroup := r.Group("/auth")
	authGroup.POST("/signup", accountController.SignUpHandler)
	authGroup.POST("/login", accountController.LoginHandler)

	r.GET("/tags", tagsController.ListTagsHandler)

	meGroup := r.Group("/me")
	meGroup.Use(middleware.JWTAuthMiddleware())
	meGroup.GET("", accountController.GetProfileHandler)
	meGroup.PATCH("/settings", accountController.UpdateSettingsHandler)
	meGroup.GET("/tags", tagsController.GetMyTagsHandler)
	meGroup.PUT("/tags", tagsController.ReplaceMyTagsHandler)
	meGroup.POST("/thoughts", thoughtController.CreateThoughtHandler)
	meGroup.GET("/thoughts", thoughtController.ListThoughtsHandler)
	meGroup.DELETE("/thoughts/:id", thoughtController.DeleteThoughtHandler)

	discoverGroup := r.Group("/discover")
	discoverGroup.Use(middleware.JWTAuthMiddleware())
	discoverGroup.GET("", discoverController.GetRecommendationsHandler)
	discoverGroup.GET("/:userId/reason", discoverController.GetReasonHandler)
}
