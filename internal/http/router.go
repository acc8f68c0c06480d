package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/http/middleware"
	"terminal-portal/internal/model"
)

// NewRouter wires the public board, the operator console and the admin
// panel. metricsHandler may be nil.
func NewRouter(handler *Handler, parser *auth.Parser, metricsHandler http.Handler, env string, log zerolog.Logger) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(ginlog.SetLogger(
		ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
		ginlog.WithLogger(func(c *gin.Context, _ zerolog.Logger) zerolog.Logger {
			return log.With().Str("request_id", middleware.GetRequestID(c)).Logger()
		}),
		// Auth sits on the route groups, so the principal is only known once
		// the request has run.
		ginlog.WithContext(func(c *gin.Context, e *zerolog.Event) *zerolog.Event {
			if p, ok := middleware.MustPrincipal(c); ok && p.IsAuthenticated() {
				e = e.Int64("user_id", p.UserID).Str("rol", string(p.Role))
			}
			return e
		}),
	))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:   []string{"Content-Type", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.Auth(parser, true))
	{
		public.POST("/auth/login", handler.login)
		public.POST("/auth/logout", handler.logout)
		public.GET("/board", handler.board)
		public.GET("/recorridos", handler.searchPublic)
		public.GET("/catalogos", handler.catalogs)
	}

	operator := api.Group("/operador")
	operator.Use(middleware.Auth(parser, false), middleware.RequireRoles(model.UserRoleOperator, model.UserRoleAdmin))
	{
		operator.GET("/recorridos", handler.operatorWindow)
		operator.GET("/filtros", handler.operatorFilters)
		operator.POST("/verificar", handler.verify)
		operator.POST("/extras", handler.recordExtra)
		operator.POST("/estado", handler.updateStatus)
		operator.GET("/historial/verificaciones", handler.verificationHistory)
		operator.GET("/historial/extras", handler.extraHistory)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(parser, false), middleware.RequireRoles(model.UserRoleAdmin))
	{
		admin.GET("/recorridos", handler.searchAdmin)
		admin.GET("/recorridos/:tipo/:id", handler.getMovement)
		admin.POST("/recorridos", handler.saveMovement)
		admin.DELETE("/recorridos/:tipo/:id", handler.deleteMovement)
		admin.POST("/importar/:tipo", handler.importSchedule)

		admin.GET("/noticias", handler.listNews)
		admin.POST("/noticias", handler.saveNews)
		admin.PUT("/noticias/:id", handler.saveNews)
		admin.DELETE("/noticias/:id", handler.deleteNews)

		admin.GET("/empresas", handler.catalogs)
		admin.POST("/empresas", handler.saveCompany)
		admin.PUT("/empresas/:id", handler.saveCompany)
		admin.DELETE("/empresas/:id", handler.deleteCompany)
		admin.POST("/lugares", handler.savePlace)
		admin.PUT("/lugares/:id", handler.savePlace)
		admin.DELETE("/lugares/:id", handler.deletePlace)

		admin.GET("/flota", handler.listFleet)
		admin.POST("/flota", handler.saveFleet)
		admin.PUT("/flota/:id", handler.saveFleet)
		admin.DELETE("/flota/:id", handler.deleteFleet)

		admin.GET("/usuarios", handler.listUsers)
		admin.POST("/usuarios", handler.saveUser)
		admin.PUT("/usuarios/:id", handler.saveUser)
		admin.DELETE("/usuarios/:id", handler.deleteUser)

		admin.GET("/reportes/verificaciones", handler.verificationReport)
	}

	return router
}
