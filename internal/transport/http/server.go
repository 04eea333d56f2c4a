package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"rolechat/internal/ai"
	appsvc "rolechat/internal/app"
	"rolechat/internal/bootstrap"
	"rolechat/internal/cache"
	"rolechat/internal/memory"
	"rolechat/internal/repository"
	"rolechat/internal/transport/http/handler"
	"rolechat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/login.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/register", "web/register.html")
	router.StaticFile("/dashboard", "web/dashboard.html")
	router.StaticFile("/roles", "web/roles.html")
	router.StaticFile("/chat", "web/chat.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	roleRepo := repository.NewRoleRepository(app.MySQL)
	convRepo := repository.NewConversationRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	roleService := appsvc.NewRoleService(roleRepo)

	completer := ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})
	contextBuilder := memory.NewContextBuilder(app.MemoryClient, app.Scopes, app.Log)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	chatService := appsvc.NewChatService(
		userRepo,
		roleRepo,
		convRepo,
		messageRepo,
		completer,
		contextBuilder,
		app.Ingestor,
		app.Scopes,
		historyCache,
		app.Config.LLM.MaxContextMessage,
		app.Log,
	)

	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	roleGroup := v1.Group("/roles")
	roleGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	roleGroup.GET("", roleHandler.Catalog)
	roleGroup.GET("/:id", roleHandler.Get)

	convGroup := v1.Group("/conversations")
	convGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	convGroup.POST("", chatHandler.CreateConversation)
	convGroup.GET("", chatHandler.ListConversations)
	convGroup.GET("/:id", chatHandler.GetConversation)
	convGroup.GET("/:id/messages", chatHandler.GetHistory)
	convGroup.POST("/:id/messages", chatHandler.SendMessage)
	convGroup.DELETE("/:id", chatHandler.DeleteConversation)
	convGroup.POST("/:id/delete", chatHandler.DeleteConversation)

	return router
}
