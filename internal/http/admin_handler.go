package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"terminal-portal/internal/http/middleware"
	"terminal-portal/internal/report"
	"terminal-portal/internal/service"
)

const maxImportBytes = 8 << 20

func (h *Handler) getMovement(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	movement, err := h.scheduleService.GetMovement(c.Request.Context(), principal, c.Param("tipo"), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(movement))
}

func (h *Handler) saveMovement(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req struct {
		ID      string `json:"id" form:"id"`
		Tipo    string `json:"tipo" form:"tipo"`
		Fecha   string `json:"fecha" form:"fecha"`
		Hora    string `json:"hora" form:"hora"`
		Empresa string `json:"empresa" form:"empresa"`
		Lugar   string `json:"lugar" form:"lugar"`
		Anden   string `json:"anden" form:"anden"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(req.ID), 10, 64)

	movement, err := h.scheduleService.SaveMovement(c.Request.Context(), principal, service.MovementInput{
		ID:        id,
		Direction: req.Tipo,
		Fecha:     req.Fecha,
		Hora:      req.Hora,
		Empresa:   req.Empresa,
		Lugar:     req.Lugar,
		Anden:     req.Anden,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	c.JSON(status, successResponse(movement))
}

func (h *Handler) deleteMovement(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.scheduleService.DeleteMovement(c.Request.Context(), principal, c.Param("tipo"), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) importSchedule(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("file is required"))
		return
	}
	if header.Size > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse("file too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	defer file.Close()

	summary, err := h.scheduleService.Import(c.Request.Context(), principal, c.Param("tipo"), file)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) listNews(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	items, err := h.newsService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(items))
}

func (h *Handler) saveNews(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req struct {
		Contenido string   `json:"contenido" form:"contenido"`
		Activa    checkbox `json:"activa" form:"activa"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id := optionalParamID(c)
	news, err := h.newsService.Save(c.Request.Context(), principal, service.NewsInput{
		ID:        id,
		Contenido: req.Contenido,
		Activa:    req.Activa.bool(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(savedStatus(id), successResponse(news))
}

func (h *Handler) deleteNews(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.newsService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type nameRequest struct {
	Nombre string `json:"nombre" form:"nombre"`
}

func (h *Handler) saveCompany(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id := optionalParamID(c)
	company, err := h.masterService.SaveCompany(c.Request.Context(), principal, id, req.Nombre)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(savedStatus(id), successResponse(company))
}

func (h *Handler) deleteCompany(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeleteCompany(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) savePlace(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req nameRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id := optionalParamID(c)
	place, err := h.masterService.SavePlace(c.Request.Context(), principal, id, req.Nombre)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(savedStatus(id), successResponse(place))
}

func (h *Handler) deletePlace(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeletePlace(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listFleet(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	entries, err := h.fleetService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) saveFleet(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req struct {
		Patente string   `json:"patente" form:"patente"`
		Empresa string   `json:"empresa" form:"empresa"`
		Activa  checkbox `json:"activa" form:"activa"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id := optionalParamID(c)
	entry, err := h.fleetService.Save(c.Request.Context(), principal, service.FleetInput{
		ID:      id,
		Patente: req.Patente,
		Empresa: req.Empresa,
		Activa:  req.Activa.bool(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(savedStatus(id), successResponse(entry))
}

func (h *Handler) deleteFleet(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.fleetService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUsers(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	users, err := h.userService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(users))
}

func (h *Handler) saveUser(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	var req struct {
		Username string   `json:"username" form:"username"`
		Rut      string   `json:"rut" form:"rut"`
		Password string   `json:"password" form:"password"`
		Rol      string   `json:"rol" form:"rol"`
		Activo   checkbox `json:"activo" form:"activo"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	id := optionalParamID(c)
	user, err := h.userService.Save(c.Request.Context(), principal, service.UserInput{
		ID:       id,
		Username: req.Username,
		Rut:      req.Rut,
		Password: req.Password,
		Rol:      req.Rol,
		Activo:   req.Activo.bool(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(savedStatus(id), successResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, _ := middleware.MustPrincipal(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) verificationReport(c *gin.Context) {
	doc, name, err := h.reportService.VerificationReport(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		if errors.Is(err, report.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// optionalParamID is zero on create routes, which carry no :id.
func optionalParamID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	return id
}

func savedStatus(id int64) int {
	if id == 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}

// checkbox binds form checkbox values as well as JSON booleans.
type checkbox string

func (b *checkbox) UnmarshalJSON(data []byte) error {
	*b = checkbox(strings.Trim(string(data), `"`))
	return nil
}

func (b checkbox) bool() bool {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "1", "true", "on", "si", "sí", "yes":
		return true
	}
	return false
}
