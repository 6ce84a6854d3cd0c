package http

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/taskhive/taskhive-backend/internal/adapters/primary/websocket"
	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/config"
	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/mocks"
	"github.com/taskhive/taskhive-backend/internal/events"
)

// wsFrame mirrors the outbound message envelope with Data decoded generically.
type wsFrame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

type wsFixture struct {
	server   *httptest.Server
	bus      *events.Bus
	tm       *auth.TokenManager
	projects *mocks.MockProjectService
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := wsAdapter.NewHub(logger)
	go hub.Run()

	bus := events.NewBus(logger)
	wsAdapter.NewDispatcher(hub, logger).Attach(bus)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	projects := mocks.NewMockProjectService()

	cfg := &config.Config{
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 5 * time.Second,
		},
		App: config.AppConfig{Environment: "development"},
	}

	handler := NewWebSocketHandler(hub, tm, projects, cfg, logger)

	server := httptest.NewServer(stdhttp.HandlerFunc(handler.ServeHTTP))
	t.Cleanup(server.Close)

	return &wsFixture{server: server, bus: bus, tm: tm, projects: projects}
}

func (f *wsFixture) wsURL(projectID uuid.UUID) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "?projectId=" + projectID.String()
}

func (f *wsFixture) token(t *testing.T, userID uuid.UUID, username string) string {
	t.Helper()
	token, err := f.tm.GenerateToken(userID, username, username)
	require.NoError(t, err)
	return token
}

// dial connects with the token in the X-Auth-Token header.
func (f *wsFixture) dial(t *testing.T, projectID uuid.UUID, token string) *websocket.Conn {
	t.Helper()
	header := stdhttp.Header{"X-Auth-Token": []string{token}}
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(projectID), header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var frame wsFrame
	err := conn.ReadJSON(&frame)
	require.Error(t, err, "expected no frame, got %v", frame)
}

func TestWebSocketHandler_BroadcastIsolation(t *testing.T) {
	f := newWSFixture(t)

	projectA := uuid.New()
	projectB := uuid.New()
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	f.projects.On("RequireMember", mock.Anything, projectA, alice).Return(nil)
	f.projects.On("RequireMember", mock.Anything, projectA, bob).Return(nil)
	f.projects.On("RequireMember", mock.Anything, projectB, carol).Return(nil)

	connAlice := f.dial(t, projectA, f.token(t, alice, "alice"))
	connBob := f.dial(t, projectA, f.token(t, bob, "bob"))
	connCarol := f.dial(t, projectB, f.token(t, carol, "carol"))

	ticket := &domain.Ticket{
		ID:             1,
		Title:          "Ship the board",
		TicketType:     domain.TypeTask,
		TicketPriority: domain.PriorityMedium,
		TicketStatus:   domain.StatusBacklog,
		ProjectID:      projectA,
		CreatorID:      alice,
		CreatedAt:      time.Now().UTC(),
	}
	f.bus.Publish(domain.NewEvent(domain.EventTicketCreated, projectA, alice, ticket))

	// Every member of project A gets the frame, including the actor. Each
	// frame names the project, the creator, and when it happened, with the
	// full ticket snapshot nested inside.
	for _, conn := range []*websocket.Conn{connAlice, connBob} {
		frame := readFrame(t, conn)
		assert.Equal(t, "ticket.created", frame.Event)
		assert.Equal(t, projectA.String(), frame.Data["projectId"])
		assert.Equal(t, alice.String(), frame.Data["creatorId"])

		ts, ok := frame.Data["timestamp"].(string)
		require.True(t, ok, "frame has no timestamp")
		_, err := time.Parse(time.RFC3339, ts)
		require.NoError(t, err)

		snapshot, ok := frame.Data["ticket"].(map[string]any)
		require.True(t, ok, "frame has no ticket snapshot")
		assert.Equal(t, "Ship the board", snapshot["title"])
		assert.Equal(t, projectA.String(), snapshot["projectId"])
	}

	// Project B's room stays silent.
	expectNoFrame(t, connCarol)
}

func TestWebSocketHandler_UserDisconnectedOnClose(t *testing.T) {
	f := newWSFixture(t)

	projectID := uuid.New()
	leaver := uuid.New()
	stayer := uuid.New()

	f.projects.On("RequireMember", mock.Anything, projectID, leaver).Return(nil)
	f.projects.On("RequireMember", mock.Anything, projectID, stayer).Return(nil)

	connLeaver := f.dial(t, projectID, f.token(t, leaver, "leaver"))
	connStayer := f.dial(t, projectID, f.token(t, stayer, "stayer"))

	require.NoError(t, connLeaver.Close())

	frame := readFrame(t, connStayer)
	assert.Equal(t, "user.disconnected", frame.Event)
	assert.Equal(t, leaver.String(), frame.Data["userId"])
	assert.Equal(t, "leaver", frame.Data["username"])

	ts, ok := frame.Data["timestamp"].(string)
	require.True(t, ok, "user.disconnected frame has no timestamp")
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
}

func TestWebSocketHandler_TokenChannels(t *testing.T) {
	f := newWSFixture(t)

	projectID := uuid.New()
	userID := uuid.New()
	f.projects.On("RequireMember", mock.Anything, projectID, userID).Return(nil)

	token := f.token(t, userID, "alice")

	t.Run("authorization bearer header", func(t *testing.T) {
		header := stdhttp.Header{"Authorization": []string{"Bearer " + token}}
		conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(projectID), header)
		require.NoError(t, err)
		_ = conn.Close()
	})

	t.Run("token query parameter", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(projectID)+"&token="+token, nil)
		require.NoError(t, err)
		_ = conn.Close()
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(projectID), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed authorization header is a bad request", func(t *testing.T) {
		header := stdhttp.Header{"Authorization": []string{"Token " + token}}
		_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(projectID), header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		header := stdhttp.Header{"X-Auth-Token": []string{"not-a-jwt"}}
		_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(projectID), header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	})
}

func TestWebSocketHandler_ProjectGate(t *testing.T) {
	f := newWSFixture(t)

	userID := uuid.New()
	token := f.token(t, userID, "alice")
	header := stdhttp.Header{"X-Auth-Token": []string{token}}

	t.Run("missing projectId", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http")
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	})

	t.Run("projectId is not a uuid", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?projectId=42"
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown project", func(t *testing.T) {
		missing := uuid.New()
		f.projects.On("RequireMember", mock.Anything, missing, userID).
			Return(apperrors.ErrProjectNotFound)

		_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(missing), header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-member", func(t *testing.T) {
		foreign := uuid.New()
		f.projects.On("RequireMember", mock.Anything, foreign, userID).
			Return(apperrors.ErrNotProjectMember)

		_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(foreign), header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
	})
}

func TestWebSocketHandler_PingPong(t *testing.T) {
	f := newWSFixture(t)

	projectID := uuid.New()
	userID := uuid.New()
	f.projects.On("RequireMember", mock.Anything, projectID, userID).Return(nil)

	conn := f.dial(t, projectID, f.token(t, userID, "alice"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "PING"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "PONG", frame.Event)
}
