package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskmanager/docs"
	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handler"
	"taskmanager/internal/logging"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Task     *handler.TaskHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log logrus.FieldLogger, tokens *auth.TokenService, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require a valid bearer token)
	secured := api.Group("", auth.Middleware(tokens))

	secured.GET("/auth/me", h.Auth.Me)

	secured.GET("/task", h.Task.ListTasks)
	secured.GET("/task/:id", h.Task.GetTask)
	secured.POST("/task", h.Task.CreateTask)
	secured.PUT("/task/:id", h.Task.UpdateTask)
	secured.DELETE("/task/:id", h.Task.DeleteTask)

	secured.GET("/user", h.User.ListUsers)
	secured.GET("/user/:id", h.User.GetUser)

	secured.GET("/category", h.Category.ListCategories)
	secured.POST("/category", h.Category.CreateCategory)
}
