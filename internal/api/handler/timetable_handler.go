package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/internal/api/middleware"
	"educareer/backend/internal/dto"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/response"
)

// 课表模块错误码
const (
	codeNoFile             = 50001
	codeFileTooLarge       = 50002
	codeUnsupportedFile    = 50003
	codeInvalidCSV         = 50004
	codeTimetableEmpty     = 50005
	codeExtractionFailed   = 50006
	codeICSParseFailed     = 50007
	codeNoTimetable        = 50008
	codeExportFormat       = 50009
	codeRecommendationDown = 50010
)

const defaultMaxUploadBytes = 10 << 20

// TimetableHandler 课表模块 Handler（上传解析 / 保存 / 导出 / 推荐）
type TimetableHandler struct {
	svc            service.TimetableService
	exportSvc      service.ExportService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService, exportSvc service.ExportService, maxUploadBytes int64, logger *zap.Logger) *TimetableHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &TimetableHandler{svc: svc, exportSvc: exportSvc, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Parse 解析上传的课表文件，只返回预览不保存
// POST /api/timetable/parse   multipart/form-data, field="file"
func (h *TimetableHandler) Parse(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.svc.Parse(c.Request.Context(), userID, filename, data)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Upload 解析并保存课表
// POST /api/timetable/upload   multipart/form-data, field="file"
//
// 支持 CSV、ICS 直接解析；PDF / 图片交给外部 OCR 服务
func (h *TimetableHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.svc.Upload(c.Request.Context(), userID, filename, data)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OKWithMessage(c, "Timetable processed successfully", resp)
}

// Save 保存前端编辑后的课表，courses 由服务端派生
// POST /api/users/timetable
func (h *TimetableHandler) Save(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveTimetableRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Save(c.Request.Context(), userID, req.Timetable)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OKWithMessage(c, "Timetable saved successfully", resp)
}

// Get 已保存的课表
// GET /api/users/timetable
func (h *TimetableHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Certifications 基于课表课程的认证推荐
// GET /api/timetable/certifications
func (h *TimetableHandler) Certifications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.svc.Certifications(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OK(c, list)
}

// Recommendations 外部个性化推荐（优先读缓存）
// GET /api/timetable/recommendations
func (h *TimetableHandler) Recommendations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Recommendations(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Export 导出课表
// GET /api/timetable/export?format=csv|xlsx|ics
func (h *TimetableHandler) Export(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ExportTimetableRequest
	if !bindQuery(c, &req) {
		return
	}

	file, err := h.exportSvc.Export(c.Request.Context(), userID, req.Format)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}
	sendFile(c, file)
}

// Template CSV 模板下载
// GET /api/timetable/template
func (h *TimetableHandler) Template(c *gin.Context) {
	sendFile(c, h.exportSvc.Template())
}

// readUpload 读取 multipart 的 file 字段，超限返回 413
func (h *TimetableHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, middleware.CodePayloadTooLarge, "Request body too large")
			return "", nil, false
		}
		response.BadRequest(c, codeNoFile, "No file uploaded")
		return "", nil, false
	}
	if fh.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, codeFileTooLarge, "File too large")
		return "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		internalError(c, h.logger, err)
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		internalError(c, h.logger, err)
		return "", nil, false
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, codeFileTooLarge, "File too large")
		return "", nil, false
	}
	return fh.Filename, data, true
}

// sendFile 以附件形式返回导出文件
func sendFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"; filename*=UTF-8''`+url.PathEscape(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content.Bytes())
}

// handleTimetableError 统一课表模块错误映射
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExcelUnsupported),
		errors.Is(err, service.ErrUnsupportedFormat):
		response.BadRequest(c, codeUnsupportedFile, err.Error())
	case errors.Is(err, service.ErrCSVTooShort),
		errors.Is(err, service.ErrCSVMissingColumns):
		response.BadRequest(c, codeInvalidCSV, err.Error())
	case errors.Is(err, service.ErrTimetableEmpty):
		response.BadRequest(c, codeTimetableEmpty, err.Error())
	case errors.Is(err, service.ErrICSParseFailed):
		response.BadRequest(c, codeICSParseFailed, service.ErrICSParseFailed.Error())
	case errors.Is(err, service.ErrAIExtractionFailed):
		response.Error(c, http.StatusBadGateway, codeExtractionFailed, service.ErrAIExtractionFailed.Error())
	case errors.Is(err, service.ErrRecommendationUnavailable):
		response.Error(c, http.StatusServiceUnavailable, codeRecommendationDown, err.Error())
	case errors.Is(err, service.ErrExportNoTimetable):
		response.NotFound(c, codeNoTimetable, err.Error())
	case errors.Is(err, service.ErrExportUnknownType):
		response.BadRequest(c, codeExportFormat, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, codeUserNotFound, err.Error())
	default:
		internalError(c, h.logger, err)
	}
}
