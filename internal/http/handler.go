package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/http/middleware"
	"terminal-portal/internal/model"
	"terminal-portal/internal/report"
	"terminal-portal/internal/service"
)

type Handler struct {
	scheduleService *service.ScheduleService
	checkinService  *service.CheckinService
	fleetService    *service.FleetService
	masterService   *service.MasterDataService
	newsService     *service.NewsService
	userService     *service.UserService
	reportService   *report.Service
	issuer          *auth.Issuer
	secureCookie    bool
	log             zerolog.Logger
	now             func() time.Time
}

type Services struct {
	Schedule *service.ScheduleService
	Checkin  *service.CheckinService
	Fleet    *service.FleetService
	Master   *service.MasterDataService
	News     *service.NewsService
	Users    *service.UserService
	Reports  *report.Service
}

func NewHandler(services Services, issuer *auth.Issuer, env string, log zerolog.Logger) *Handler {
	return &Handler{
		scheduleService: services.Schedule,
		checkinService:  services.Checkin,
		fleetService:    services.Fleet,
		masterService:   services.Master,
		newsService:     services.News,
		userService:     services.Users,
		reportService:   services.Reports,
		issuer:          issuer,
		secureCookie:    env == "production",
		log:             log,
		now:             time.Now,
	}
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusUnauthorized, errorResponse("Usuario o contraseña incorrectos"))
			return
		}
		h.handleError(c, err)
		return
	}

	token, expires, err := h.issuer.Issue(*user)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.issuer.TTL().Seconds()), "/", "", h.secureCookie, true)

	h.log.Info().Int64("user_id", user.ID).Str("rol", string(user.Rol)).Msg("user logged in")
	c.JSON(http.StatusOK, successResponse(gin.H{
		"token":      token,
		"expires_at": expires.UTC(),
		"user":       user,
	}))
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, successResponse(gin.H{"message": "Sesión cerrada correctamente."}))
}

func (h *Handler) board(c *gin.Context) {
	view := h.scheduleService.Board(c.Request.Context(), h.now())
	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) searchPublic(c *gin.Context) {
	h.search(c, true)
}

func (h *Handler) searchAdmin(c *gin.Context) {
	h.search(c, false)
}

func (h *Handler) search(c *gin.Context, public bool) {
	opts := service.SearchOptions{
		Fecha:   c.Query("fecha"),
		Hora:    c.Query("hora"),
		Empresa: c.Query("empresa"),
		Lugar:   c.Query("lugar"),
		Anden:   c.Query("anden"),
		Page:    queryInt(c, "page", 1),
		Public:  public,
	}
	result := h.scheduleService.Search(c.Request.Context(), h.now(), opts)
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) catalogs(c *gin.Context) {
	ctx := c.Request.Context()
	companies, err := h.masterService.Companies(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	places, err := h.masterService.Places(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"empresas": companies, "lugares": places}))
}

func (h *Handler) operatorWindow(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	window, entries, err := h.scheduleService.SelectWindow(c.Request.Context(), principal, h.now(), c.Query("fecha"))
	if err != nil {
		h.log.Error().Err(err).Str("fecha", window.Day).Msg("operator window unavailable")
		c.JSON(http.StatusOK, successResponse(gin.H{
			"ventana":    window,
			"recorridos": []model.RecorridoEntry{},
			"warning":    "No fue posible cargar los recorridos.",
		}))
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"ventana": window, "recorridos": entries}))
}

func (h *Handler) operatorFilters(c *gin.Context) {
	options, err := h.scheduleService.FilterOptions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(options))
}

func (h *Handler) verify(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, checkinResponse("error", "Sesión inválida", "principal missing"))
		return
	}

	var req struct {
		RecorridoID   string `json:"recorrido_id" form:"recorrido_id"`
		Tipo          string `json:"tipo" form:"tipo"`
		Patente       string `json:"patente" form:"patente"`
		Anden         string `json:"anden" form:"anden"`
		Observaciones string `json:"observaciones" form:"observaciones"`
		Fecha         string `json:"fecha" form:"fecha"`
		Hora          string `json:"hora" form:"hora"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, checkinResponse("error", "Datos inválidos", err.Error()))
		return
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(req.RecorridoID), 10, 64)

	result, err := h.checkinService.Verify(c.Request.Context(), principal, service.VerifyInput{
		RecorridoID:   id,
		Direction:     req.Tipo,
		Plate:         req.Patente,
		Platform:      req.Anden,
		Observaciones: req.Observaciones,
		Fecha:         req.Fecha,
		Hora:          req.Hora,
	})
	if err != nil {
		h.checkinError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    result.Status,
		"title":     result.Title,
		"message":   result.Message,
		"resultado": result.Outcome,
	})
}

func (h *Handler) recordExtra(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, checkinResponse("error", "Sesión inválida", "principal missing"))
		return
	}

	var req struct {
		Patente     string `json:"patente" form:"patente"`
		Tipo        string `json:"tipo" form:"tipo"`
		Anden       string `json:"anden" form:"anden"`
		Fecha       string `json:"fecha" form:"fecha"`
		Hora        string `json:"hora" form:"hora"`
		Empresa     string `json:"empresa" form:"empresa"`
		Lugar       string `json:"lugar" form:"lugar"`
		Observacion string `json:"observacion" form:"observacion"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, checkinResponse("error", "Datos inválidos", err.Error()))
		return
	}

	result, err := h.checkinService.RecordExtra(c.Request.Context(), principal, service.ExtraInput{
		Plate:       req.Patente,
		Direction:   req.Tipo,
		Platform:    req.Anden,
		Fecha:       req.Fecha,
		Hora:        req.Hora,
		Empresa:     req.Empresa,
		Lugar:       req.Lugar,
		Observacion: req.Observacion,
	})
	if err != nil {
		h.checkinError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   result.Status,
		"title":    result.Title,
		"message":  result.Message,
		"conocido": result.Known,
	})
}

func (h *Handler) updateStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, checkinResponse("error", "Sesión inválida", "principal missing"))
		return
	}

	var req struct {
		ID     string `json:"id" form:"id"`
		Tipo   string `json:"tipo" form:"tipo"`
		Estado string `json:"estado" form:"estado"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, checkinResponse("error", "Datos inválidos", err.Error()))
		return
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(req.ID), 10, 64)

	if err := h.scheduleService.UpdateStatus(c.Request.Context(), principal, req.Tipo, id, req.Estado); err != nil {
		h.checkinError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkinResponse("success", "Estado actualizado", "El estado del recorrido fue actualizado."))
}

func (h *Handler) verificationHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	page, err := h.checkinService.ListVerifications(c.Request.Context(), principal, historyOptions(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(page))
}

func (h *Handler) extraHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	page, err := h.checkinService.ListExtras(c.Request.Context(), principal, historyOptions(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(page))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status, msg := h.classify(c, err)
	c.JSON(status, errorResponse(msg))
}

// checkinError answers in the {status, title, message} shape the operator
// console expects.
func (h *Handler) checkinError(c *gin.Context, err error) {
	status, msg := h.classify(c, err)
	title := "Error"
	switch status {
	case http.StatusBadRequest:
		title = "Faltan datos"
	case http.StatusNotFound:
		title = "Recorrido no encontrado"
	case http.StatusForbidden:
		title = "Sin permiso"
	}
	c.JSON(status, checkinResponse("error", title, msg))
}

func (h *Handler) classify(c *gin.Context, err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, err.Error()
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("handler error")
		return http.StatusInternalServerError, "internal error"
	}
}

func historyOptions(c *gin.Context) service.HistoryOptions {
	return service.HistoryOptions{
		Fecha:     c.Query("fecha"),
		Direction: c.Query("tipo"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := strings.TrimSpace(c.Query(key)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid id"))
		return 0, false
	}
	return id, true
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}

func checkinResponse(status, title, message string) gin.H {
	return gin.H{"status": status, "title": title, "message": message}
}
