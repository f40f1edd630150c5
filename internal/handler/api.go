package handler

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/metrics"
)

// The kiosk API is the token producer the enrollment flow depends on: a
// capture device registers once, then posts pending enrollments (face image
// plus precomputed encoding) and recognition check-ins.

// RegisterDevice issues an HS256 token pair for a kiosk device.
func (h *Handler) RegisterDevice(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = uuid.NewString()
	}

	tokens, err := auth.Issue(req.DeviceID, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"device_id":     req.DeviceID,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func formFileBytes(c *gin.Context, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	return data, header, err
}

// CreateEnrollment stores a new pending enrollment and returns the token plus
// the link the enrollee must visit.
func (h *Handler) CreateEnrollment(c *gin.Context) {
	image, _, err := formFileBytes(c, "face_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "face_image file required"})
		return
	}
	encoding, _, err := formFileBytes(c, "face_encoding")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "face_encoding file required"})
		return
	}
	display := c.PostForm("created_at_display")
	if display == "" {
		display = time.Now().UTC().Format("2006-01-02 15:04:05")
	}

	token, err := h.enrollments.Create(c.Request.Context(), image, encoding, display)
	if err != nil {
		log.Printf("create enrollment failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create enrollment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"enroll_url": h.cfg.BaseURL + "/enroll/" + token,
		"expires_in": int((10 * time.Minute).Seconds()),
	})
}

// CreateCheckin appends an attendance log for an already-enrolled student,
// identified by student code.
func (h *Handler) CreateCheckin(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
		Type      string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = attendance.TypeCheckIn
	}
	if !attendance.ValidType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown attendance type"})
		return
	}

	id, err := h.logs.Insert(c.Request.Context(), req.StudentID, req.Type, time.Now())
	if err != nil {
		if err == attendance.ErrUnknownStudent {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not enrolled"})
			return
		}
		log.Printf("checkin insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record check-in"})
		return
	}
	metrics.CheckinsTotal.WithLabelValues(req.Type).Inc()
	c.JSON(http.StatusCreated, gin.H{"log_id": id, "type": req.Type})
}
