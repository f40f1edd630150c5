// Package handler holds the gin handlers for the admin web UI and the kiosk
// API. Templates live under web/templates and are loaded by the server
// entrypoint.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/enrollment"
	"rollcall/internal/export"
	"rollcall/internal/metrics"
)

// Handler bundles the repositories behind the HTTP surface.
type Handler struct {
	enrollments *enrollment.Repository
	logs        *attendance.Repository
	admins      *auth.Repository
	cfg         config.App
}

// New creates a handler.
func New(enrollments *enrollment.Repository, logs *attendance.Repository, admins *auth.Repository, cfg config.App) *Handler {
	return &Handler{enrollments: enrollments, logs: logs, admins: admins, cfg: cfg}
}

func flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	_ = session.Save()
}

func takeFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		_ = session.Save()
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

func adminName(c *gin.Context) string {
	if name, ok := sessions.Default(c).Get(auth.SessionAdminName).(string); ok {
		return name
	}
	return "Admin"
}

// Index routes to the dashboard when a session exists, else to login.
func (h *Handler) Index(c *gin.Context) {
	if sessions.Default(c).Get(auth.SessionAdminID) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Next":    c.Query("next"),
		"Flashes": takeFlashes(c),
	})
}

// Login authenticates an admin. Failures are reported generically so the
// response does not reveal which field was wrong.
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	admin, err := h.admins.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("login lookup failed: %v", err)
		}
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Error": "Invalid username/password",
			"Next":  c.PostForm("next"),
		})
		return
	}

	session := sessions.Default(c)
	session.Set(auth.SessionAdminID, admin.ID)
	session.Set(auth.SessionAdminName, admin.Name)
	if err := session.Save(); err != nil {
		log.Printf("session save failed: %v", err)
	}
	metrics.LoginsTotal.Inc()

	next := c.PostForm("next")
	if next == "" || next[0] != '/' {
		next = "/admin"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}

// Menu renders the admin landing page.
func (h *Handler) Menu(c *gin.Context) {
	c.HTML(http.StatusOK, "menu.html", gin.H{"AdminName": adminName(c)})
}

// EnrollForm shows the enrollment form when the token is still valid. An
// expired token is purged by this read.
func (h *Handler) EnrollForm(c *gin.Context) {
	token := c.Param("token")
	err := h.enrollments.Fetch(c.Request.Context(), token, time.Now())
	switch {
	case errors.Is(err, enrollment.ErrNotFound):
		c.String(http.StatusNotFound, "Token not found")
	case errors.Is(err, enrollment.ErrExpired):
		metrics.TokensExpired.Inc()
		c.String(http.StatusGone, "Token expired")
	case err != nil:
		log.Printf("enrollment fetch failed: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
	default:
		c.HTML(http.StatusOK, "enroll.html", gin.H{
			"Token":   token,
			"Flashes": takeFlashes(c),
		})
	}
}

// EnrollSubmit consumes the token: upserts the student, appends a check-in
// log and deletes the pending enrollment in one transaction.
func (h *Handler) EnrollSubmit(c *gin.Context) {
	token := c.Param("token")
	name := c.PostForm("name")
	studentCode := c.PostForm("student_id")

	res, err := h.enrollments.Consume(c.Request.Context(), token, name, studentCode, time.Now())
	switch {
	case errors.Is(err, enrollment.ErrNotFound):
		c.String(http.StatusNotFound, "Token not found")
	case errors.Is(err, enrollment.ErrExpired):
		metrics.TokensExpired.Inc()
		c.String(http.StatusGone, "Token expired")
	case errors.Is(err, enrollment.ErrValidation):
		flash(c, "Name and Student ID required")
		c.Redirect(http.StatusFound, "/enroll/"+token)
	case err != nil:
		log.Printf("enrollment consume failed: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
	default:
		metrics.EnrollmentsConsumed.Inc()
		metrics.CheckinsTotal.WithLabelValues(attendance.TypeCheckIn).Inc()
		c.HTML(http.StatusOK, "success.html", gin.H{
			"Name":      res.Name,
			"StudentID": res.StudentCode,
		})
	}
}

func filtersFromQuery(c *gin.Context) attendance.Filters {
	return attendance.Filters{
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		StudentID: c.Query("student_filter"),
		Type:      c.Query("type_filter"),
		SortBy:    c.DefaultQuery("sort_by", "created_at_utc"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
}

// Dashboard renders the filtered, sorted attendance view plus the pending
// enrollment panel and the student dropdown.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	f := filtersFromQuery(c)

	logs, err := h.logs.List(ctx, f, attendance.DashboardLimit)
	if err != nil {
		log.Printf("attendance query failed: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}
	pendings, err := h.enrollments.ListRecent(ctx, 50)
	if err != nil {
		log.Printf("pending enrollments query failed: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}
	students, err := h.logs.Students(ctx)
	if err != nil {
		log.Printf("students query failed: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"AdminName":  adminName(c),
		"Attendance": logs,
		"Pendings":   pendings,
		"Students":   students,
		"Filters":    f,
		"Flashes":    takeFlashes(c),
	})
}

// FaceImage streams a pending enrollment's captured image.
func (h *Handler) FaceImage(c *gin.Context) {
	img, err := h.enrollments.FaceImage(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.String(http.StatusNotFound, "Image not found")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", img)
}

// ExportExcel streams the uncapped filtered result set as an xlsx attachment.
// This is the single boundary where generation failures degrade to a flash
// message instead of an error page.
func (h *Handler) ExportExcel(c *gin.Context) {
	f := filtersFromQuery(c)
	rows, err := h.logs.List(c.Request.Context(), f, 0)
	if err != nil {
		log.Printf("export query failed: %v", err)
		flash(c, "Error exporting Excel file: "+err.Error())
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, rows); err != nil {
		if errors.Is(err, export.ErrEmptyResult) {
			flash(c, "No data to export for the selected filters")
		} else {
			log.Printf("export generation failed: %v", err)
			flash(c, "Error exporting Excel file: "+err.Error())
		}
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	metrics.ExportsTotal.Inc()
	filename := export.Filename(time.Now())
	c.Header("Content-Disposition", "attachment;filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// DeleteStudent removes one student by id.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	if _, err := h.logs.DeleteStudent(c.Request.Context(), id); err != nil {
		log.Printf("delete student failed: %v", err)
		flash(c, "Could not delete student")
	} else {
		flash(c, "Student deleted")
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteToken removes one pending enrollment.
func (h *Handler) DeleteToken(c *gin.Context) {
	if _, err := h.enrollments.Delete(c.Request.Context(), c.Param("token")); err != nil {
		log.Printf("delete token failed: %v", err)
		flash(c, "Could not delete token")
	} else {
		flash(c, "Token deleted")
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteAllTokens removes every pending enrollment.
func (h *Handler) DeleteAllTokens(c *gin.Context) {
	if _, err := h.enrollments.DeleteAll(c.Request.Context()); err != nil {
		log.Printf("delete all tokens failed: %v", err)
		flash(c, "Could not delete tokens")
	} else {
		flash(c, "All pending enrollments deleted")
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteSelectedTokens removes the posted token list in one batched statement.
func (h *Handler) DeleteSelectedTokens(c *gin.Context) {
	tokens := c.PostFormArray("tokens")
	if len(tokens) == 0 {
		flash(c, "No tokens selected")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	n, err := h.enrollments.DeleteMany(c.Request.Context(), tokens)
	if err != nil {
		log.Printf("delete selected tokens failed: %v", err)
		flash(c, "Could not delete tokens")
	} else {
		flash(c, fmt.Sprintf("Deleted %d pending enrollment(s)", n))
	}
	c.Redirect(http.StatusFound, "/admin")
}

// NotFound renders the fallback page.
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", nil)
}
