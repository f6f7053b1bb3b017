package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kindred/internal/models/request_models"
	"kindred/internal/services"
	"kindred/pkg/utils"
)

type ThoughtController struct {
	thoughtService services.ThoughtServiceInterface
}

func NewThoughtController(thoughtService services.ThoughtServiceInterface) *ThoughtController {
	return &ThoughtController{thoughtService: thoughtService}
}

func (tc *ThoughtController) CreateThoughtHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.CreateThoughtRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid thought payload")
		return
	}

	thought, err := tc.thoughtService.CreateThought(c.Request.Context(), userID, request.Content)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, thought, "Thought created")
}

func (tc *ThoughtController) ListThoughtsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	thoughts, err := tc.thoughtService.ListThoughts(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, thoughts, "Fetched thoughts")
}

func (tc *ThoughtController) DeleteThoughtHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	thoughtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid thought id")
		return
	}

	if err := tc.thoughtService.DeleteThought(c.Request.Context(), userID, thoughtID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Thought deleted")
}
