package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/adoptafacil/adoption-api/internal/api/handler"
	"github.com/adoptafacil/adoption-api/internal/api/middleware"
	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
	opshttp "github.com/adoptafacil/adoption-api/internal/infrastructure/http"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/http/handlers"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/storage"
)

const maxBodySize = "25M"

// httpMetrics registers the echoprometheus collectors once per process.
var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("adoptafacil")
})

// Services bundles the core services the HTTP layer depends on.
type Services struct {
	Auth       ports.AuthService
	Pets       ports.PetService
	Donations  ports.DonationService
	Roles      ports.RoleService
	Persons    ports.PersonService
	Adoptions  ports.AdoptionService
	Tokens     ports.TokenVerifier
	Identities ports.IdentityLookup
}

// Options carries router settings that are not services.
type Options struct {
	// UploadDir is served under /uploads when images are stored on local disk.
	UploadDir string
	Checks    []handlers.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "Idempotency-Key"},
	}))
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(httpMetrics())
	e.Use(middleware.Authenticate(svc.Tokens, svc.Identities, log))

	// --- Public endpoints ---
	opshttp.RegisterOps(e, opts.Checks...)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.UploadDir != "" {
		e.Static(strings.TrimSuffix(storage.UploadsPrefix, "/"), opts.UploadDir)
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	petHandler := handler.NewPetHandler(svc.Pets)
	donationHandler := handler.NewDonationHandler(svc.Donations)
	roleHandler := handler.NewRoleHandler(svc.Roles)
	personHandler := handler.NewPersonHandler(svc.Persons)
	adoptionHandler := handler.NewAdoptionHandler(svc.Adoptions)

	requireIdentity := middleware.RequireIdentity()
	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Listings ---
	pets := api.Group("/mascotas", requireIdentity)
	pets.POST("", petHandler.Create)
	pets.GET("", petHandler.List)
	pets.GET("/admin/all", petHandler.ListAll)
	pets.GET("/:id", petHandler.Get)
	pets.PUT("/:id", petHandler.Update)
	pets.DELETE("/:id", petHandler.Delete)
	pets.DELETE("/:mascotaId/imagenes/:imagenId", petHandler.DeleteImage)

	// --- Donations ---
	donations := api.Group("/donaciones", requireIdentity)
	donations.POST("", donationHandler.Create)
	donations.GET("", donationHandler.List)
	donations.GET("/:id", donationHandler.Get)
	donations.GET("/donante/:id", donationHandler.ListByDonor)
	donations.DELETE("/:id", donationHandler.Delete)

	// --- Persons ---
	persons := api.Group("/persons", requireIdentity)
	persons.GET("", personHandler.List)
	persons.POST("", personHandler.Create)
	persons.GET("/:id", personHandler.Get)
	persons.PUT("/:id", personHandler.Update)
	persons.GET("/email/:email", personHandler.GetByEmail)
	persons.GET("/role/:role", personHandler.ListByRole)
	persons.DELETE("/:id", personHandler.Delete, middleware.RequireRole(domain.RoleAdmin))

	// --- Roles ---
	roles := api.Group("/roles", requireIdentity)
	roles.GET("", roleHandler.List)
	roles.POST("", roleHandler.Create)
	roles.GET("/:id", roleHandler.Get)
	roles.PUT("/:id", roleHandler.Update)
	roles.GET("/type/:type", roleHandler.GetByType)

	// --- Adoption requests ---
	requests := api.Group("/solicitudes", requireIdentity)
	requests.POST("", adoptionHandler.Create)
	requests.GET("", adoptionHandler.List)
	requests.GET("/:id", adoptionHandler.Get)
	requests.PUT("/:id/estado", adoptionHandler.SetStatus)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			if u, ok := middleware.IdentityFrom(c.Request().Context()); ok {
				ev = ev.Str("user", u.Email).Str("authority", middleware.Authority(c))
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
