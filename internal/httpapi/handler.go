package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"swiftpass/internal/attendance"
	"swiftpass/internal/auth"
	"swiftpass/internal/identity"
	"swiftpass/internal/qr"
	"swiftpass/internal/student"
)

type accounts interface {
	Register(ctx context.Context, in identity.RegisterInput) (student.Student, error)
	Login(ctx context.Context, email, password string) (student.Student, error)
}

type directory interface {
	Get(ctx context.Context, id string) (student.Student, error)
	Update(ctx context.Context, id string, fields student.UpdateFields) (student.Student, error)
	List(ctx context.Context) ([]student.Student, error)
}

type ledger interface {
	TimeIn(ctx context.Context, studentID, labSchedule string) (attendance.Record, error)
	TimeOut(ctx context.Context, id string) (attendance.Record, error)
	ListForStudent(ctx context.Context, studentID string) ([]attendance.Record, error)
	ListForDate(ctx context.Context, date string) ([]attendance.DayRecord, error)
}

type qrcodes interface {
	Generate(ctx context.Context, studentID string) (qr.Code, error)
	Scan(ctx context.Context, raw string) (attendance.Record, error)
}

// TokenConfig is what the auth handlers need to mint session tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	TTL        time.Duration
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	tokens   TokenConfig
	accounts accounts
	students directory
	ledger   ledger
	qr       qrcodes
}

// New creates the handler set.
func New(tokens TokenConfig, accounts accounts, students directory, ledger ledger, qrs qrcodes) *Handler {
	return &Handler{tokens: tokens, accounts: accounts, students: students, ledger: ledger, qr: qrs}
}

// ---------- Auth ----------

type registerRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	FullName    string  `json:"fullName" binding:"required"`
	StudentID   string  `json:"studentId" binding:"required"`
	Course      string  `json:"course" binding:"required"`
	LabSchedule *string `json:"labSchedule"`
}

// Register creates the identity, the profile, and the initial QR record,
// and returns a session token alongside the profile.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := h.accounts.Register(c.Request.Context(), identity.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		StudentNumber: req.StudentID,
		Course:        req.Course,
		LabSchedule:   req.LabSchedule,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	token, _, err := auth.Issue(profile.ID, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "student registered successfully",
		"user":    profile,
		"token":   token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a fresh session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, _, err := auth.Issue(profile.ID, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": profile})
}

// ---------- Students ----------

func (h *Handler) GetStudent(c *gin.Context) {
	profile, err := h.students.Get(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateStudent applies a partial profile update; the QR payload is
// re-synced as part of the same operation.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var fields student.UpdateFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := h.students.Update(c.Request.Context(), c.Param("studentId"), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// ---------- Attendance ----------

type timeInRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	LabSchedule string `json:"labSchedule"`
}

func (h *Handler) TimeIn(c *gin.Context) {
	var req timeInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.ledger.TimeIn(c.Request.Context(), req.StudentID, req.LabSchedule)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "time in recorded successfully", "attendance": rec})
}

func (h *Handler) TimeOut(c *gin.Context) {
	rec, err := h.ledger.TimeOut(c.Request.Context(), c.Param("attendanceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "time out recorded successfully", "attendance": rec})
}

// AttendanceByStudent serves both /api/attendance/student/:studentId and
// /api/qr/attendance/:studentId; there is one ledger query behind both.
func (h *Handler) AttendanceByStudent(c *gin.Context) {
	recs, err := h.ledger.ListForStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) AttendanceByDate(c *gin.Context) {
	recs, err := h.ledger.ListForDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ---------- QR ----------

func (h *Handler) GenerateQR(c *gin.Context) {
	code, err := h.qr.Generate(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

type scanRequest struct {
	QRData string `json:"qrData" binding:"required"`
}

func (h *Handler) ScanQR(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.qr.Scan(c.Request.Context(), req.QRData)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attendance recorded successfully", "attendance": rec})
}

// Routes mounts the API surface. The two admin listing endpoints carry
// the admin gate in addition to bearer auth.
func (h *Handler) Routes(r *gin.Engine, authn, admin gin.HandlerFunc) {
	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	protected := api.Group("", authn)
	protected.GET("/students/:studentId", h.GetStudent)
	protected.PUT("/students/:studentId", h.UpdateStudent)
	protected.GET("/students", admin, h.ListStudents)

	protected.POST("/attendance/time-in", h.TimeIn)
	protected.PATCH("/attendance/time-out/:attendanceId", h.TimeOut)
	protected.GET("/attendance/student/:studentId", h.AttendanceByStudent)
	protected.GET("/attendance/date/:date", admin, h.AttendanceByDate)

	protected.GET("/qr/generate/:studentId", h.GenerateQR)
	protected.POST("/qr/scan", h.ScanQR)
	protected.GET("/qr/attendance/:studentId", h.AttendanceByStudent)
}
