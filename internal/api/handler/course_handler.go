package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/response"
)

// 课程模块错误码
const (
	codeCourseNotFound     = 30001
	codeCourseCodeExists   = 30002
	codeAlreadyEnrolled    = 30003
	codeSlotTimeRange      = 30004
	codeInvalidDueDate     = 30005
	codeAssignmentNotFound = 30006
	codeAlreadySubmitted   = 30007
)

// CourseHandler 课程 / 选课 / 作业 HTTP 处理器
type CourseHandler struct {
	svc    service.CourseService
	logger *zap.Logger
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(svc service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{svc: svc, logger: logger}
}

// List 课程目录
// GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	var req dto.CourseListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Create 新建课程
// POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// Enroll 选课
// POST /api/courses/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.svc.Enroll(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListEnrollments 我的选课
// GET /api/courses/enrollments
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.svc.ListEnrollments(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, list)
}

// Timetable 已选课程的上课时段
// GET /api/courses/timetable
func (h *CourseHandler) Timetable(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slots, err := h.svc.Timetable(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, slots)
}

// CreateSlot 新增课程时段
// POST /api/courses/:courseId/slots
func (h *CourseHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	slot, err := h.svc.CreateSlot(c.Request.Context(), c.Param("courseId"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, slot)
}

// ListAssignments 已选课程的作业
// GET /api/courses/assignments
func (h *CourseHandler) ListAssignments(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.svc.ListAssignments(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateAssignment 布置作业
// POST /api/courses/:courseId/assignments
func (h *CourseHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.svc.CreateAssignment(c.Request.Context(), c.Param("courseId"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, assignment)
}

// Submit 提交作业
// POST /api/courses/assignments/:assignmentId/submit
func (h *CourseHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	submission, err := h.svc.Submit(c.Request.Context(), userID, c.Param("assignmentId"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, submission)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, codeCourseNotFound, err.Error())
	case errors.Is(err, service.ErrCourseCodeExists):
		response.BadRequest(c, codeCourseCodeExists, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.BadRequest(c, codeAlreadyEnrolled, err.Error())
	case errors.Is(err, service.ErrSlotTimeRange):
		response.BadRequest(c, codeSlotTimeRange, err.Error())
	case errors.Is(err, service.ErrInvalidDueDate):
		response.BadRequest(c, codeInvalidDueDate, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, codeAssignmentNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.BadRequest(c, codeAlreadySubmitted, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
