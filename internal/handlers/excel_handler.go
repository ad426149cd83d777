package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"gantt-planner-api/internal/excel"
	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportSize bounds uploaded workbooks.
const maxImportSize = 10 << 20

type ExcelHandler struct {
	imports *services.ImportService
}

func NewExcelHandler(imports *services.ImportService) *ExcelHandler {
	return &ExcelHandler{imports: imports}
}

// ImportTasks handles POST /api/projects/:id/import with a multipart "file" field
func (h *ExcelHandler) ImportTasks(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An .xlsx file is required in the \"file\" field"})
		return
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.imports.Import(c.Request.Context(), middleware.CurrentUserID(c), projectID, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportTasks handles GET /api/projects/:id/export
func (h *ExcelHandler) ExportTasks(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.imports.Export(c.Request.Context(), middleware.CurrentUserID(c), projectID, &buf); err != nil {
		respondError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("project-%d-tasks.xlsx", projectID), buf.Bytes())
}

// DownloadTemplate handles GET /api/import/template
func (h *ExcelHandler) DownloadTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := excel.Template(&buf); err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "task-import-template.xlsx", buf.Bytes())
}

func attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
