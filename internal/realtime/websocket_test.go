package realtime

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	products []domain.Product
	news     []domain.NewsItem
	newsErr  error
}

func (s stubCatalog) ListProducts(context.Context) ([]domain.Product, error) { return s.products, nil }
func (s stubCatalog) ListNews(context.Context) ([]domain.NewsItem, error)    { return s.news, s.newsErr }

type echoBot struct{}

func (echoBot) Reply(msg string) string { return "bot: " + msg }

type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func dial(t *testing.T, hub *Hub, catalog stubCatalog) (*websocket.Conn, context.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(hub, catalog, catalog, echoBot{}, nil, quietLogger()).RegisterRoutes(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func TestWebSocketSnapshotPublishAndChat(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()
	catalog := stubCatalog{
		products: []domain.Product{{ID: 1, Title: "Organic Wheat Seeds", Price: "₹150"}},
		news:     []domain.NewsItem{{ID: 1, Title: "Kisan Drone Scheme"}},
	}
	conn, ctx := dial(t, hub, catalog)

	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventProductsUpdate, f.Event)
	products, ok := f.Data.([]any)
	require.True(t, ok)
	assert.Len(t, products, 1)

	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventNewsUpdate, f.Event)

	hub.Publish(domain.EventOrdersUpdate, map[string]any{"id": 12, "status": "shipped"})
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventOrdersUpdate, f.Event)
	assert.Equal(t, "shipped", f.Data.(map[string]any)["status"])

	require.NoError(t, wsjson.Write(ctx, conn, frame{Event: "ping", Data: "ignored"}))
	require.NoError(t, wsjson.Write(ctx, conn, frame{Event: domain.EventChatMessage, Data: "Which fertilizer is best for wheat?"}))
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventChatMessage, f.Event)
	assert.Equal(t, "bot: Which fertilizer is best for wheat?", f.Data)
}

func TestWebSocketSnapshotSkipsFailedSource(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()
	conn, ctx := dial(t, hub, stubCatalog{newsErr: errors.New("db down")})

	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventProductsUpdate, f.Event)

	hub.Publish(domain.EventProductsUpdate, []string{})
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	assert.Equal(t, domain.EventProductsUpdate, f.Event, "no news snapshot when news cannot be read")
}

func TestWebSocketClosedOnHubShutdown(t *testing.T) {
	hub := NewHub(8, quietLogger())
	conn, ctx := dial(t, hub, stubCatalog{})

	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	require.NoError(t, wsjson.Read(ctx, conn, &f))

	hub.Close()
	err := wsjson.Read(ctx, conn, &f)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
