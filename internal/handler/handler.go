package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/roster"
	"rollcall/internal/store"
)

// Handler exposes the roster read models and intents as JSON endpoints.
// Unlike the original UI this layer never swallows a failed mutation: every
// store error comes back as a JSON error body.
type Handler struct {
	svc *roster.Service
}

// New builds a handler over the roster service.
func New(svc *roster.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts all routes under the given group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/courses", h.ListCourses)
	r.POST("/courses", h.CreateCourse)
	r.DELETE("/courses/:id", h.DeleteCourse)

	r.GET("/students", h.ListStudents)
	r.POST("/students", h.CreateStudent)
	r.DELETE("/students/:id", h.DeleteStudent)

	r.GET("/attendance", h.GetSheet)
	r.POST("/attendance/mark", h.Mark)

	r.GET("/selection", h.GetSelection)
	r.PUT("/selection", h.UpdateSelection)

	r.POST("/refresh", h.Refresh)
}

// ---------- Courses ----------

func (h *Handler) ListCourses(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Snapshot().CourseSummaries())
}

type createCourseRequest struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Instructor string `json:"instructor"`
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	crs, err := h.svc.AddCourse(c.Request.Context(), req.Code, req.Name, req.Instructor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, crs)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.svc.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Students ----------

func (h *Handler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Snapshot().StudentSummaries())
}

type createStudentRequest struct {
	RollNumber string `json:"roll_number" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	CourseID   string `json:"course_id" binding:"required"`
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.svc.AddStudent(c.Request.Context(), req.RollNumber, req.Name, req.Email, req.CourseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.svc.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Attendance ----------

// GetSheet renders the attendance sheet for course_id and date query params,
// falling back to the stored selection for either.
func (h *Handler) GetSheet(c *gin.Context) {
	selCourse, selDate := h.svc.Selection()
	courseID := c.DefaultQuery("course_id", selCourse)
	date := c.DefaultQuery("date", selDate)

	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no course selected"})
		return
	}
	if !roster.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	sheet, ok := h.svc.Snapshot().AttendanceSheet(courseID, date)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	c.JSON(http.StatusOK, sheet)
}

type markRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=present absent late"`
	CourseID  string `json:"course_id"`
	Date      string `json:"date"`
}

func (h *Handler) Mark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	selCourse, selDate := h.svc.Selection()
	if req.CourseID == "" {
		req.CourseID = selCourse
	}
	if req.Date == "" {
		req.Date = selDate
	}
	if req.CourseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no course selected"})
		return
	}

	updated, err := h.svc.MarkAttendance(c.Request.Context(), req.StudentID, req.CourseID, req.Date, roster.Status(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"student_id": req.StudentID,
		"course_id":  req.CourseID,
		"date":       req.Date,
		"status":     req.Status,
		"updated":    updated,
	})
}

// ---------- Selection ----------

func (h *Handler) GetSelection(c *gin.Context) {
	courseID, date := h.svc.Selection()
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "date": date})
}

type selectionRequest struct {
	CourseID *string `json:"course_id"`
	Date     *string `json:"date"`
}

func (h *Handler) UpdateSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CourseID != nil {
		if err := h.svc.SelectCourse(*req.CourseID); err != nil {
			fail(c, err)
			return
		}
	}
	if req.Date != nil {
		if err := h.svc.SelectDate(*req.Date); err != nil {
			fail(c, err)
			return
		}
	}
	h.GetSelection(c)
}

// ---------- Refresh ----------

func (h *Handler) Refresh(c *gin.Context) {
	if err := h.svc.LoadAll(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps service errors to status codes. Anything unrecognized is a store
// failure surfaced as 502.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, roster.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, roster.ErrUnknownCourse), errors.Is(err, roster.ErrUnknownStudent):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
