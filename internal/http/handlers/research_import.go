package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/osteobridge-backend/internal/http/response"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

type ResearchImportHandler struct {
	log     *logger.Logger
	imports services.ResearchImportService
}

func NewResearchImportHandler(log *logger.Logger, imports services.ResearchImportService) *ResearchImportHandler {
	return &ResearchImportHandler{log: log.With("handler", "ResearchImportHandler"), imports: imports}
}

// Import accepts a multipart CSV under "file" and answers with the import
// result as-is.
func (h *ResearchImportHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Failure(c, http.StatusBadRequest, "No file part")
		return
	}
	if err := services.ValidateCSVUpload(fh.Filename, fh.Size, h.imports.MaxUploadBytes()); err != nil {
		response.FailWith(c, err, "Invalid upload")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.FailWith(c, err, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	out, err := h.imports.Import(c.Request.Context(), services.CSVUpload{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		response.FailWith(c, err, "Import failed")
		return
	}
	c.Header("X-Import-Run-ID", strconv.FormatUint(uint64(out.RunID), 10))
	c.JSON(http.StatusOK, out.Result)
}

// Runs lists recent import attempts, newest first.
func (h *ResearchImportHandler) Runs(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20)
	if !ok || limit < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
		return
	}
	runs, err := h.imports.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list import runs", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_runs_failed", errors.New("failed to fetch import runs"))
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
