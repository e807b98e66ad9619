package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-go/shareit/internal/application"
	"github.com/shareit-go/shareit/internal/pkg/middleware"
	"github.com/shareit-go/shareit/internal/pkg/response"
)

// ItemHandler handles HTTP requests for item listings and their comments.
type ItemHandler struct {
	items    *application.ItemService
	comments *application.CommentService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *application.ItemService, comments *application.CommentService) *ItemHandler {
	return &ItemHandler{items: items, comments: comments}
}

// RegisterRoutes registers item and comment routes.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/items")
	items.Use(middleware.UserIDMiddleware())
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListOwnerItems)
		items.GET("/:id", h.GetItem)
		items.PATCH("/:id", h.UpdateItem)
		items.POST("/:id/comment", h.AddComment)
		items.GET("/:id/comments", h.ListComments)
	}
}

// CreateItem handles POST /items.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.items.CreateItem(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListOwnerItems handles GET /items.
func (h *ItemHandler) ListOwnerItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.items.GetOwnerItems(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetItem handles GET /items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	result, err := h.items.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateItem handles PATCH /items/:id.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req application.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.items.UpdateItem(c.Request.Context(), userID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddComment handles POST /items/:id/comment.
func (h *ItemHandler) AddComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req application.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.comments.AddComment(c.Request.Context(), userID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListComments handles GET /items/:id/comments.
func (h *ItemHandler) ListComments(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	result, err := h.comments.ListComments(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func itemIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return uuid.Nil, false
	}
	return id, true
}
