package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	"github.com/shareit-go/shareit/internal/pkg/middleware"
	"github.com/shareit-go/shareit/internal/pkg/pagination"
	"github.com/shareit-go/shareit/internal/pkg/response"
)

// BookItemRequest is the gateway-side shape of a booking request.
type BookItemRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// UserRequest is the gateway-side shape of a user registration.
type UserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ItemRequest is the gateway-side shape of a new item listing.
type ItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
}

// ItemPatchRequest is the gateway-side shape of a partial item update.
type ItemPatchRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Available   *bool  `json:"available,omitempty"`
}

// CommentRequest is the gateway-side shape of a new comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Handler validates requests and forwards them to the booking server.
type Handler struct {
	client *Client
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates a gateway Handler.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// RegisterRoutes registers the public API, mirroring the server's paths.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("/:id", h.forwardWithID)
	}

	bookings := r.Group("/bookings")
	bookings.Use(middleware.UserIDMiddleware())
	{
		bookings.POST("", h.BookItem)
		bookings.GET("", h.ListBookings)
		bookings.GET("/owner", h.ListBookings)
		bookings.GET("/:id", h.forwardWithID)
		bookings.PATCH("/:id", h.DecideBooking)
	}

	items := r.Group("/items")
	items.Use(middleware.UserIDMiddleware())
	{
		items.POST("", h.CreateItem)
		items.GET("", h.forward)
		items.GET("/:id", h.forwardWithID)
		items.PATCH("/:id", h.UpdateItem)
		items.POST("/:id/comment", h.AddComment)
		items.GET("/:id/comments", h.forwardWithID)
	}
}

// BookItem handles POST /bookings.
func (h *Handler) BookItem(c *gin.Context) {
	var req BookItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !req.End.After(req.Start) {
		response.BadRequest(c, "booking end must be after start")
		return
	}
	if req.Start.Before(h.now()) {
		response.BadRequest(c, "booking start must not be in the past")
		return
	}
	h.forwardJSON(c, req)
}

// DecideBooking handles PATCH /bookings/:id?approved=.
func (h *Handler) DecideBooking(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	query := url.Values{}
	query.Set("approved", strconv.FormatBool(approved))
	h.send(c, query.Encode(), nil)
}

// ListBookings handles GET /bookings and GET /bookings/owner. The state and
// page are normalized here so unknown states never reach the server.
func (h *Handler) ListBookings(c *gin.Context) {
	state, err := bookingDomain.ParseState(c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pagination.FromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	query := url.Values{}
	query.Set("state", state.String())
	query.Set("from", strconv.Itoa(page.From))
	query.Set("size", strconv.Itoa(page.Size))
	h.send(c, query.Encode(), nil)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.forwardJSON(c, req)
}

// CreateItem handles POST /items.
func (h *Handler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.forwardJSON(c, req)
}

// UpdateItem handles PATCH /items/:id.
func (h *Handler) UpdateItem(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}
	var req ItemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.forwardJSON(c, req)
}

// AddComment handles POST /items/:id/comment.
func (h *Handler) AddComment(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.forwardJSON(c, req)
}

func (h *Handler) forwardWithID(c *gin.Context) {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		response.BadRequest(c, "invalid ID")
		return
	}
	h.forward(c)
}

func (h *Handler) forward(c *gin.Context) {
	h.send(c, "", nil)
}

func (h *Handler) forwardJSON(c *gin.Context, body interface{}) {
	raw, err := json.Marshal(body)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, "", raw)
}

func (h *Handler) send(c *gin.Context, rawQuery string, body []byte) {
	resp, err := h.client.Forward(c.Request.Context(), Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		RawQuery:  rawQuery,
		UserID:    c.GetHeader(middleware.UserIDHeader),
		RequestID: middleware.GetRequestID(c),
		Body:      body,
	})
	if err != nil {
		if errors.Is(err, ErrServerUnavailable) {
			response.Fail(c, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
			return
		}
		h.logger.Error("failed to forward request",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Fail(c, http.StatusBadGateway, "BAD_GATEWAY", "booking server unreachable")
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(resp.Status, contentType, resp.Body)
}
