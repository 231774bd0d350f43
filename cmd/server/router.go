package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// setupRouter creates the router with the standard middleware stack and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRequestLogger(app.logger))
	r.Use(middleware.Recoverer)

	userHandler := api.NewUserHandler(app.userService, app.jwtService, app.cookieOptions(), app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userService, app.logger)

	r.Get("/health", api.Health)
	r.Get("/hello-world", api.NewHelloHandler(app.config.App.Name))

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/token/refresh", userHandler.RefreshToken)
		r.Post("/logout", userHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/me", userHandler.Me)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
	})

	r.Route("/task", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/add", taskHandler.CreateTask)
		r.Get("/list", taskHandler.ListTasks)
		r.Get("/{id}", taskHandler.GetTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.Delete("/{id}", taskHandler.DeleteTask)
	})

	return r
}
