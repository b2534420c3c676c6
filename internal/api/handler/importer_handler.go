package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImporterHandler 批量导入导出 HTTP 处理器
type ImporterHandler struct {
	importerSvc service.ImporterService
}

// NewImporterHandler 创建 ImporterHandler
func NewImporterHandler(importerSvc service.ImporterService) *ImporterHandler {
	return &ImporterHandler{importerSvc: importerSvc}
}

// ImportTeachers 批量导入教师账号
// POST /api/v1/admin/import/teachers
func (h *ImporterHandler) ImportTeachers(c *gin.Context) {
	f, ok := openUploadedExcel(c)
	if !ok {
		return
	}
	defer f.Close()

	result, err := h.importerSvc.ImportTeachers(c.Request.Context(), f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportStudents 批量导入学生账号
// POST /api/v1/admin/import/students
func (h *ImporterHandler) ImportStudents(c *gin.Context) {
	f, ok := openUploadedExcel(c)
	if !ok {
		return
	}
	defer f.Close()

	result, err := h.importerSvc.ImportStudents(c.Request.Context(), f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

// TeacherTemplate 下载教师导入模板
// GET /api/v1/admin/import/teachers/template
func (h *ImporterHandler) TeacherTemplate(c *gin.Context) {
	buf, err := h.importerSvc.TeacherTemplate(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	writeXLSX(c, "teacher_import_template.xlsx", buf.Bytes())
}

// StudentTemplate 下载学生导入模板
// GET /api/v1/admin/import/students/template
func (h *ImporterHandler) StudentTemplate(c *gin.Context) {
	buf, err := h.importerSvc.StudentTemplate(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	writeXLSX(c, "student_import_template.xlsx", buf.Bytes())
}

// ExportStudents 导出学生名册
// GET /api/v1/admin/export/students
func (h *ImporterHandler) ExportStudents(c *gin.Context) {
	var req dto.ListStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, err := h.importerSvc.ExportStudents(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	filename := fmt.Sprintf("students_%s.xlsx", time.Now().Format("20060102_150405"))
	writeXLSX(c, filename, buf.Bytes())
}

// handleImportError 统一处理导入业务错误
func (h *ImporterHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyExcel):
		response.BadRequest(c, 55003, "Excel 内容为空")
	case errors.Is(err, service.ErrBadExcelTemplate):
		response.BadRequest(c, 55004, "Excel 模板格式不正确")
	default:
		response.InternalError(c)
	}
}

// openUploadedExcel 读取 multipart 表单里的 file 字段
func openUploadedExcel(c *gin.Context) (multipart.File, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return nil, false
	}
	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return nil, false
	}
	return f, true
}

// writeXLSX 以附件形式返回 xlsx 内容
func writeXLSX(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
