package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/osteobridge-backend/internal/http/response"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

type PDBHandler struct {
	log *logger.Logger
	pdb services.PDBService
	// maxFileBytes caps how much of an uploaded model is read into memory.
	maxFileBytes int64
}

func NewPDBHandler(log *logger.Logger, pdb services.PDBService, maxFileBytes int64) *PDBHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = services.DefaultMaxUploadBytes
	}
	return &PDBHandler{log: log.With("handler", "PDBHandler"), pdb: pdb, maxFileBytes: maxFileBytes}
}

func (h *PDBHandler) Proteins(c *gin.Context) {
	out, err := h.pdb.ListProteins(c.Request.Context())
	if err != nil {
		response.FailWith(c, err, "Failed to fetch proteins")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": out})
}

func (h *PDBHandler) Compounds(c *gin.Context) {
	out, err := h.pdb.ListCompounds(c.Request.Context())
	if err != nil {
		response.FailWith(c, err, "Failed to fetch compounds")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": out})
}

func formID(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.PostForm(key)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func (h *PDBHandler) Upload(c *gin.Context) {
	in := services.PDBUpload{
		ProteinID:  formID(c, "protein"),
		CompoundID: formID(c, "compound"),
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Failure(c, http.StatusBadRequest, "No file part")
		return
	}
	if fh.Size > h.maxFileBytes {
		response.Failure(c, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.FailWith(c, err, "Failed to read uploaded file")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, h.maxFileBytes+1))
	if err != nil {
		response.FailWith(c, err, "Failed to read uploaded file")
		return
	}
	in.FileName = fh.Filename
	in.ContentType = fh.Header.Get("Content-Type")
	in.Content = content

	out, err := h.pdb.Upload(c.Request.Context(), in)
	if err != nil {
		response.FailWith(c, err, "Error processing upload")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"data":    out,
	})
}

func (h *PDBHandler) File(c *gin.Context) {
	name := c.Param("filename")
	rc, err := h.pdb.Open(c.Request.Context(), name)
	if err != nil {
		response.FailWith(c, err, "Failed to read PDB file")
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, -1, "chemical/x-pdb", rc, nil)
}
