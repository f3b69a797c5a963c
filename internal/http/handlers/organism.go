package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/osteobridge-backend/internal/http/response"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

type OrganismHandler struct {
	log       *logger.Logger
	organisms services.OrganismService
}

func NewOrganismHandler(log *logger.Logger, organisms services.OrganismService) *OrganismHandler {
	return &OrganismHandler{log: log.With("handler", "OrganismHandler"), organisms: organisms}
}

func (h *OrganismHandler) ClinicalStages(c *gin.Context) {
	stages, err := h.organisms.ListClinicalStages(c.Request.Context())
	if err != nil {
		response.FailWith(c, err, "Failed to fetch clinical stages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": stages})
}

// intQuery returns def when key is absent and ok=false when it is not an
// integer.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || strings.TrimSpace(raw) == "" {
		return def, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	return v, err == nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (h *OrganismHandler) List(c *gin.Context) {
	stage := strings.TrimSpace(c.Query("stage"))
	if stage == "" {
		response.Failure(c, http.StatusBadRequest, "Stage parameter is required")
		return
	}
	stageID, err := strconv.ParseUint(stage, 10, 32)
	if !isDigits(stage) || err != nil {
		response.Failure(c, http.StatusBadRequest, "Stage parameter must be a valid integer")
		return
	}
	page, ok := intQuery(c, "page", services.DefaultPage)
	if !ok {
		response.Failure(c, http.StatusBadRequest, "Page must be a positive integer")
		return
	}
	perPage, ok := intQuery(c, "per_page", services.DefaultPerPage)
	if !ok {
		response.Failure(c, http.StatusBadRequest, "Per_page must be an integer")
		return
	}

	out, err := h.organisms.ListByStage(c.Request.Context(), uint(stageID), page, perPage)
	if err != nil {
		response.FailWith(c, err, "Failed to fetch organisms data")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"data":       out.Data,
		"pagination": out.Pagination,
	})
}

func (h *OrganismHandler) Reviews(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if !isDigits(raw) || err != nil {
		response.Failure(c, http.StatusBadRequest, "Invalid organism ID")
		return
	}
	out, err := h.organisms.GetReviews(c.Request.Context(), uint(id))
	if err != nil {
		h.log.Error("Failed to fetch reviews", "organism_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch reviews",
			"data": services.OrganismReviews{
				Reviews: []services.Review{},
			},
		})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": out})
}

func (h *OrganismHandler) AddRating(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if !isDigits(raw) || err != nil {
		response.Failure(c, http.StatusNotFound, "Organism not found")
		return
	}
	var req struct {
		Rating    json.RawMessage `json:"rating"`
		Review    *string         `json:"review"`
		UserName  *string         `json:"user_name"`
		UserEmail *string         `json:"user_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, "Request body is required")
		return
	}
	if len(req.Rating) == 0 {
		response.Failure(c, http.StatusBadRequest, "Rating is required")
		return
	}
	rating, err := services.ParseRating(req.Rating)
	if err != nil {
		response.FailWith(c, err, "Failed to add rating")
		return
	}
	in := services.RatingInput{
		Rating:        rating,
		ReviewerName:  req.UserName,
		ReviewerEmail: req.UserEmail,
	}
	if req.Review != nil {
		in.Review = *req.Review
	}
	ratingID, err := h.organisms.AddRating(c.Request.Context(), uint(id), in)
	if err != nil {
		response.FailWith(c, err, "Failed to add rating")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":   "Rating added successfully",
		"rating_id": ratingID,
	})
}
