package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"theknife/internal/domain"
	"theknife/internal/modules/review"
	"theknife/internal/pkg/jwt"
)

type fakeOwners map[string]string

func (f fakeOwners) OwnerOf(name string) (string, bool) {
	owner, ok := f[name]
	return owner, ok
}

func setupServer(t *testing.T) (*Hub, *jwt.Service, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(fakeOwners{"Osteria": "chef"}, zap.NewNop())
	jwtService := jwt.New("test-secret", time.Hour)

	r := gin.New()
	NewHandler(hub, jwtService, nil).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, jwtService, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/feed"
}

func dial(t *testing.T, hub *Hub, jwtService *jwt.Service, url, userID string) *websocket.Conn {
	t.Helper()
	token, err := jwtService.GenerateToken(userID, "customer")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connected(userID) > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_NewReviewReachesOwner(t *testing.T) {
	hub, jwtService, url := setupServer(t)
	owner := dial(t, hub, jwtService, url, "chef")

	hub.Notify(review.EventReviewCreated, domain.Review{ID: "REV_1", Author: "anna", RestaurantName: "Osteria", Rating: 5})

	ev := readEvent(t, owner)
	assert.Equal(t, review.EventReviewCreated, ev.Type)
	assert.Equal(t, "REV_1", ev.Review.ID)
}

func TestHub_ReplyReachesAuthor(t *testing.T) {
	hub, jwtService, url := setupServer(t)
	author := dial(t, hub, jwtService, url, "anna")

	hub.Notify(review.EventReplyAttached, domain.Review{
		ID: "REV_1", Author: "anna", RestaurantName: "Osteria", Rating: 5,
		Reply: &domain.Reply{ID: "RESP_1", Author: "chef", Text: "Thank you!"},
	})

	ev := readEvent(t, author)
	assert.Equal(t, review.EventReplyAttached, ev.Type)
	require.NotNil(t, ev.Review.Reply)
	assert.Equal(t, "Thank you!", ev.Review.Reply.Text)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, jwtService, url := setupServer(t)
	conn := dial(t, hub, jwtService, url, "chef")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connected("chef") == 0 }, 2*time.Second, 10*time.Millisecond)

	// nobody listening: must not block or panic
	hub.Notify(review.EventReviewCreated, domain.Review{RestaurantName: "Osteria"})
}

func TestHandler_RejectsBadToken(t *testing.T) {
	_, _, url := setupServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
