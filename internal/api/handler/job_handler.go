package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/service"
	pkgerrors "educareer/backend/pkg/errors"
	"educareer/backend/pkg/response"
)

// 职位 / 简历模块错误码
const (
	codeJobNotFound           = 40001
	codeAlreadyApplied        = 40002
	codeResumeNotFound        = 40003
	codeResumeVersionRequired = 40004
	codeResumeConflict        = 40005
)

// JobHandler 职位、投递与简历 HTTP 处理器
type JobHandler struct {
	jobSvc    service.JobService
	resumeSvc service.ResumeService
	logger    *zap.Logger
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobSvc service.JobService, resumeSvc service.ResumeService, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobSvc: jobSvc, resumeSvc: resumeSvc, logger: logger}
}

// List 在招职位
// GET /api/jobs
func (h *JobHandler) List(c *gin.Context) {
	var req dto.JobListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.jobSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Create 发布职位，发布人为当前用户
// POST /api/jobs
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.Created(c, job)
}

// Apply 投递职位；请求体可为空
// POST /api/jobs/:jobId/apply
func (h *JobHandler) Apply(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApplyJobRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	application, err := h.jobSvc.Apply(c.Request.Context(), userID, c.Param("jobId"), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.Created(c, application)
}

// ListApplications 我的投递
// GET /api/jobs/applications
func (h *JobHandler) ListApplications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.jobSvc.ListApplications(c.Request.Context(), userID)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.OK(c, list)
}

// ListResumes 我的简历
// GET /api/jobs/resumes
func (h *JobHandler) ListResumes(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.resumeSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateResume 新建简历
// POST /api/jobs/resumes
func (h *JobHandler) CreateResume(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ResumeRequest
	if !bindJSON(c, &req) {
		return
	}

	resume, err := h.resumeSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.Created(c, resume)
}

// UpdateResume 更新简历，version 用于乐观锁
// PUT /api/jobs/resumes/:resumeId
func (h *JobHandler) UpdateResume(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ResumeRequest
	if !bindJSON(c, &req) {
		return
	}

	resume, err := h.resumeSvc.Update(c.Request.Context(), userID, c.Param("resumeId"), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}
	response.OK(c, resume)
}

func (h *JobHandler) handleJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, codeJobNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyApplied):
		response.BadRequest(c, codeAlreadyApplied, err.Error())
	case errors.Is(err, service.ErrResumeNotFound):
		response.NotFound(c, codeResumeNotFound, err.Error())
	case errors.Is(err, service.ErrResumeVersionRequired):
		response.BadRequest(c, codeResumeVersionRequired, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, codeResumeConflict, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
