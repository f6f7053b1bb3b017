package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kindred/internal/models/request_models"
	"kindred/internal/services"
	"kindred/pkg/utils"
)

type TagController struct {
	tagService services.TagServiceInterface
}

func NewTagController(tagService services.TagServiceInterface) *TagController {
	return &TagController{tagService: tagService}
}

func (tc *TagController) ListTagsHandler(c *gin.Context) {
	tags, err := tc.tagService.ListTags(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, tags, "Fetched tags")
}

func (tc *TagController) GetMyTagsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tags, err := tc.tagService.GetUserTags(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, tags, "Fetched profile tags")
}

func (tc *TagController) ReplaceMyTagsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request request_models.ReplaceTagsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid tags payload")
		return
	}

	tagIDs := make([]uuid.UUID, 0, len(request.TagIDs))
	for _, raw := range request.TagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid tag id: "+raw)
			return
		}
		tagIDs = append(tagIDs, id)
	}

	if err := tc.tagService.ReplaceUserTags(c.Request.Context(), userID, tagIDs); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Tags updated")
}
