package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type NewsLister interface {
	ListNews(ctx context.Context) ([]domain.NewsItem, error)
}

// ChatResponder answers a free-text chat message.
type ChatResponder interface {
	Reply(message string) string
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Handler struct {
	hub            *Hub
	products       ProductLister
	news           NewsLister
	chat           ChatResponder
	originPatterns []string
	log            *logrus.Logger
}

func NewHandler(hub *Hub, products ProductLister, news NewsLister, chat ChatResponder, originPatterns []string, logger *logrus.Logger) *Handler {
	return &Handler{
		hub:            hub,
		products:       products,
		news:           news,
		chat:           chat,
		originPatterns: originPatterns,
		log:            logger,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/ws", h.Serve)
}

// snapshot is what a subscriber sees on join: the current catalog and news.
func (h *Handler) snapshot(ctx context.Context) []domain.Event {
	var events []domain.Event
	if products, err := h.products.ListProducts(ctx); err != nil {
		h.log.Warnf("Realtime: products snapshot unavailable: %v", err)
	} else {
		events = append(events, domain.Event{Name: domain.EventProductsUpdate, Data: products})
	}
	if news, err := h.news.ListNews(ctx); err != nil {
		h.log.Warnf("Realtime: news snapshot unavailable: %v", err)
	} else {
		events = append(events, domain.Event{Name: domain.EventNewsUpdate, Data: news})
	}
	return events
}

func (h *Handler) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warnf("Realtime: websocket upgrade failed from %s: %v", c.ClientIP(), err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// subscribe before reading the snapshot so nothing committed after it is missed
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)
	h.log.Infof("Realtime: client %s connected from %s", sub.ID, c.ClientIP())

	for _, ev := range h.snapshot(ctx) {
		if err := h.write(ctx, conn, ev); err != nil {
			h.log.Debugf("Realtime: client %s gone during snapshot: %v", sub.ID, err)
			return
		}
	}

	go h.readLoop(ctx, cancel, conn, sub.ID)

	for {
		select {
		case <-ctx.Done():
			h.log.Infof("Realtime: client %s disconnected", sub.ID)
			return
		case frame, ok := <-sub.C:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			cancelWrite()
			if err != nil {
				h.log.Debugf("Realtime: write to client %s failed: %v", sub.ID, err)
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, ev domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}

// readLoop handles inbound frames. Only chat messages are understood; the
// reply goes back on the same socket.
func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, id string) {
	defer cancel()
	for {
		var in inboundFrame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			var closeErr websocket.CloseError
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				h.log.Debugf("Realtime: read from client %s failed: %v", id, err)
			}
			return
		}
		if in.Event != domain.EventChatMessage || h.chat == nil {
			h.log.Debugf("Realtime: ignoring %q frame from client %s", in.Event, id)
			continue
		}

		var text string
		if err := json.Unmarshal(in.Data, &text); err != nil {
			h.log.Debugf("Realtime: chat frame from %s is not a string: %v", id, err)
			continue
		}
		reply := domain.Event{Name: domain.EventChatMessage, Data: h.chat.Reply(text)}
		if err := h.write(ctx, conn, reply); err != nil {
			return
		}
	}
}
