// Package relay is a development server that accepts participant actions over
// HTTP and rebroadcasts them as push messages. It keeps no session state; it
// only lets several terminal clients talk to each other without the full
// session server.
package relay

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/outbound"
	"github.com/pengelbrecht/poker/internal/poker"
)

// Publisher delivers push messages to a session's participants.
type Publisher interface {
	Publish(ctx context.Context, code string, msg poker.InboundMessage) error
}

type handler struct {
	pub    Publisher
	logger *log.Logger
	newID  func() string
}

// New returns an echo instance with the relay routes registered.
func New(pub Publisher, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	Register(e, pub, logger)
	return e
}

// Register wires the relay endpoints on e.
func Register(e *echo.Echo, pub Publisher, logger *log.Logger) {
	register(e, &handler{pub: pub, logger: logger, newID: uuid.NewString})
}

func register(e *echo.Echo, h *handler) {
	g := e.Group("/sessions/:code", h.validateCode)
	g.POST("/chat", h.postChat)
	g.POST("/items", h.addItem)
	g.PUT("/items/:id", h.editItem)
	g.DELETE("/items/:id", h.removeItem)
	g.POST("/estimates", h.postEstimate)
}

func (h *handler) validateCode(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := poker.ValidateSessionCode(c.Param("code")); err != nil {
			return c.String(http.StatusNotFound, "Session not found")
		}
		return next(c)
	}
}

func origin(c echo.Context) string {
	return c.Request().Header.Get(outbound.OriginHeader)
}

func (h *handler) publish(c echo.Context, msg poker.InboundMessage) error {
	code := c.Param("code")
	if err := h.pub.Publish(c.Request().Context(), code, msg); err != nil {
		h.logger.WithFields(log.Fields{"session": code, "type": msg.Kind()}).Errorf("publish failed: %v", err)
		return err
	}
	return nil
}

func (h *handler) postChat(c echo.Context) error {
	var req outbound.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.String(http.StatusBadRequest, "empty message")
	}
	msg := poker.ChatMsg{Origin: origin(c), ChatMessage: poker.ChatMessage{Author: req.Author, Text: req.Text}}
	if err := h.publish(c, msg); err != nil {
		return c.NoContent(http.StatusBadGateway)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handler) addItem(c echo.Context) error {
	req, ok := h.bindItem(c)
	if !ok {
		return c.NoContent(http.StatusBadRequest)
	}
	item := poker.Item{ID: poker.ItemID(h.newID()), Title: req.Title, Description: req.Description}
	if err := h.publish(c, poker.ItemAdd{Origin: origin(c), Item: item}); err != nil {
		return c.NoContent(http.StatusBadGateway)
	}
	return c.JSON(http.StatusOK, outbound.ItemResponse{ID: item.ID})
}

func (h *handler) editItem(c echo.Context) error {
	req, ok := h.bindItem(c)
	if !ok {
		return c.NoContent(http.StatusBadRequest)
	}
	item := poker.Item{ID: poker.ItemID(c.Param("id")), Title: req.Title, Description: req.Description}
	if err := h.publish(c, poker.ItemEdit{Origin: origin(c), Item: item}); err != nil {
		return c.NoContent(http.StatusBadGateway)
	}
	return c.NoContent(http.StatusOK)
}

func (h *handler) removeItem(c echo.Context) error {
	item := poker.Item{ID: poker.ItemID(c.Param("id"))}
	if err := h.publish(c, poker.ItemRemove{Origin: origin(c), Item: item}); err != nil {
		return c.NoContent(http.StatusBadGateway)
	}
	return c.NoContent(http.StatusOK)
}

// postEstimate records nothing; estimates are logged so a moderator can tail
// the relay output.
func (h *handler) postEstimate(c echo.Context) error {
	var req outbound.EstimateRequest
	if err := c.Bind(&req); err != nil || req.ItemID == "" || req.Estimate == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	h.logger.WithFields(log.Fields{
		"session":  c.Param("code"),
		"item":     req.ItemID,
		"author":   req.Author,
		"estimate": req.Estimate,
	}).Info("estimate submitted")
	return c.NoContent(http.StatusOK)
}

func (h *handler) bindItem(c echo.Context) (outbound.ItemRequest, bool) {
	var req outbound.ItemRequest
	if err := c.Bind(&req); err != nil {
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > poker.ItemTitleMaxLength {
		return req, false
	}
	if req.Description != nil && len(*req.Description) > poker.ItemDescriptionLength {
		return req, false
	}
	return req, true
}
