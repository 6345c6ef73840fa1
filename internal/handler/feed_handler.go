package handler

import (
	"net/http"

	"anoa.com/homeboard/internal/dto"
	"anoa.com/homeboard/internal/service"
	"anoa.com/homeboard/internal/ws"
	"anoa.com/homeboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService   service.FeedService
	searchService service.SearchService
	hub           *ws.Hub
}

func NewFeedHandler(feedService service.FeedService, searchService service.SearchService, hub *ws.Hub) *FeedHandler {
	return &FeedHandler{
		feedService:   feedService,
		searchService: searchService,
		hub:           hub,
	}
}

func (h *FeedHandler) notifyFeed() {
	if h.hub != nil {
		h.hub.NotifyAll(ws.EventFeedChanged)
	}
}

func (h *FeedHandler) GetPosts(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	posts, err := h.feedService.ListPosts(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// CreatePost reads multipart form data: a content field plus any number of
// "photos" file parts.
func (h *FeedHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	var photos []*service.PhotoUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fileHeader := range form.File["photos"] {
			f, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
				return
			}
			defer f.Close()
			photos = append(photos, &service.PhotoUpload{Reader: f, FileName: fileHeader.Filename})
		}
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, req, photos)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	c.JSON(http.StatusCreated, post)
}

func (h *FeedHandler) UpdatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.feedService.UpdatePost(c.Request.Context(), userID, id, req.Content); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *FeedHandler) DeletePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.feedService.DeletePost(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *FeedHandler) ToggleLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.feedService.ToggleLike(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *FeedHandler) AddComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.feedService.AddComment(c.Request.Context(), userID, id, req.Content); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	response.ResponseSuccess(c, http.StatusCreated)
}

func (h *FeedHandler) DeleteComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.feedService.DeleteComment(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyFeed()
	response.ResponseSuccess(c, http.StatusOK)
}

func (h *FeedHandler) SearchPosts(c *gin.Context) {
	if _, err := response.GetUserID(c); err != nil {
		response.ResponseError(c, err)
		return
	}
	if h.searchService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []service.SearchHit{})
		return
	}

	hits, err := h.searchService.Search(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, hits)
}
