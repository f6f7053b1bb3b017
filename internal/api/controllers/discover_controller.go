package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kindred/internal/services"
	"kindred/pkg/utils"
)

type DiscoverController struct {
	recommendationService services.RecommendationServiceInterface
	explanationService    services.ExplanationServiceInterface
}

func NewDiscoverController(
	recommendationService services.RecommendationServiceInterface,
	explanationService services.ExplanationServiceInterface,
) *DiscoverController {
	return &DiscoverController{
		recommendationService: recommendationService,
		explanationService:    explanationService,
	}
}

func (dc *DiscoverController) GetRecommendationsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return
	}

	recommendations, err := dc.recommendationService.GetRecommendations(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, recommendations, "Fetched recommendations")
}

func (dc *DiscoverController) GetReasonHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	candidateID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	reason, err := dc.explanationService.Explain(c.Request.Context(), userID, candidateID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"reason": reason}, "Generated reason")
}
