package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/canvas/internal/app"
	"github.com/dkeye/canvas/internal/app/orch"
	"github.com/dkeye/canvas/internal/core"
	"github.com/dkeye/canvas/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T, limiter *RoomRateLimiter) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := orch.New(app.NewRegistry(), app.NewRoomManager(), app.NewHistory(0, 0), app.SimplePolicy{},
		orch.Options{CleanupOnDisconnect: true})
	ctrl := NewSignalWSController(o, limiter, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctrl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(typ, id string, data any) {
	c.t.Helper()
	f, err := core.Encode(typ, id, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, f))
}

// next skips frames until one of type typ arrives.
func (c *wsClient) next(typ string) core.Envelope {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		env, err := core.Decode(data)
		require.NoError(c.t, err)
		if env.Type == typ {
			return env
		}
	}
}

func (c *wsClient) ack(id string) orch.Result {
	c.t.Helper()
	for {
		env := c.next(core.TypeAck)
		if env.ID != id {
			continue
		}
		var res orch.Result
		require.NoError(c.t, json.Unmarshal(env.Data, &res))
		return res
	}
}

func TestSignalEndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	a := dial(t, srv)
	assert.JSONEq(t, `1`, string(a.next(core.TypeUserCount).Data))
	assert.JSONEq(t, `[]`, string(a.next(core.TypeCanvasHistory).Data))

	b := dial(t, srv)
	assert.JSONEq(t, `2`, string(a.next(core.TypeUserCount).Data))
	assert.JSONEq(t, `2`, string(b.next(core.TypeUserCount).Data))

	ev := domain.StrokeEvent{X: 10, Y: 20, Tool: domain.ToolPen, Color: "#000000", Size: 3, Phase: domain.PhaseStart}
	a.send(core.TypeDrawing, "", ev)
	var got domain.StrokeEvent
	require.NoError(t, json.Unmarshal(b.next(core.TypeDrawing).Data, &got))
	assert.Equal(t, ev, got)

	a.send(core.TypeCreateRoom, "c1", map[string]any{"roomId": "r1", "name": "Room1", "isPrivate": true})
	res := a.ack("c1")
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Room)
	assert.True(t, res.Room.IsPrivate)

	var rooms map[domain.RoomID]domain.Room
	require.NoError(t, json.Unmarshal(b.next(core.TypeRoomList).Data, &rooms))
	assert.Contains(t, rooms, domain.RoomID("r1"))

	b.send(core.TypeJoinRoom, "j1", map[string]any{"roomId": "r1"})
	res = b.ack("j1")
	assert.False(t, res.Success)
	assert.Equal(t, "not_invited", res.Error)

	b.send(core.TypeWhoAmI, "w1", nil)
	var me orch.WhoAmI
	require.NoError(t, json.Unmarshal(b.next(core.TypeWhoAmI).Data, &me))
	require.NotEmpty(t, me.ID)

	a.send(core.TypeInvite, "i1", map[string]any{"roomId": "r1", "userId": me.ID})
	assert.True(t, a.ack("i1").Success)
	b.next(core.TypeInvited)

	b.send(core.TypeJoinRoom, "j2", map[string]any{"roomId": "r1"})
	res = b.ack("j2")
	require.True(t, res.Success)
	assert.Equal(t, []domain.ConnID{res.Room.Owner, me.ID}, res.Room.Members)

	b.send(core.TypeGetRoomList, "l1", nil)
	env := b.next(core.TypeAck)
	require.Equal(t, "l1", env.ID)
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	assert.Len(t, rooms["r1"].Members, 2)

	b.send(core.TypeDeleteRoom, "d1", map[string]any{"roomId": "r1"})
	assert.Equal(t, "not_owner", b.ack("d1").Error)

	b.send(core.TypeLeaveRoom, "x1", map[string]any{"roomId": "nope"})
	assert.True(t, b.ack("x1").Success)

	b.send(core.TypeJoinRoom, "j3", map[string]any{})
	assert.Equal(t, "invalid_payload", b.ack("j3").Error)

	require.NoError(t, b.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var perr errorPayload
	require.NoError(t, json.Unmarshal(b.next(core.TypeError).Data, &perr))
	assert.Equal(t, "invalid_payload", perr.Error)

	b.send(core.TypePing, "p1", nil)
	assert.Equal(t, "p1", b.next(core.TypePong).ID)

	require.NoError(t, b.conn.Close())
	assert.JSONEq(t, `1`, string(a.next(core.TypeUserCount).Data))
}

func TestSignalClearReachesSender(t *testing.T) {
	srv := newTestServer(t, nil)
	a := dial(t, srv)
	b := dial(t, srv)
	a.next(core.TypeCanvasHistory)

	a.send(core.TypeClearCanvas, "", nil)
	a.next(core.TypeClearCanvas)
	b.next(core.TypeClearCanvas)
}

func TestSignalCreateRoomRateLimited(t *testing.T) {
	srv := newTestServer(t, NewRoomRateLimiter(1, time.Minute))
	a := dial(t, srv)

	a.send(core.TypeCreateRoom, "1", map[string]any{"roomId": "r1"})
	assert.True(t, a.ack("1").Success)
	a.send(core.TypeCreateRoom, "2", map[string]any{"roomId": "r2"})
	assert.Equal(t, "rate_limited", a.ack("2").Error)
}

func TestSignalInviteSharesRateLimit(t *testing.T) {
	srv := newTestServer(t, NewRoomRateLimiter(2, time.Minute))
	a := dial(t, srv)

	a.send(core.TypeCreateRoom, "1", map[string]any{"roomId": "r1", "isPrivate": true})
	require.True(t, a.ack("1").Success)
	a.send(core.TypeInvite, "2", map[string]any{"roomId": "r1", "userId": "u1"})
	assert.True(t, a.ack("2").Success)
	a.send(core.TypeInvite, "3", map[string]any{"roomId": "r1", "userId": "u2"})
	assert.Equal(t, "rate_limited", a.ack("3").Error)
}

func TestSignalRejectsBadStroke(t *testing.T) {
	srv := newTestServer(t, nil)
	a := dial(t, srv)

	a.send(core.TypeDrawing, "", map[string]any{"x": 1, "y": 1, "tool": "pen", "size": -1, "phase": "start"})
	var perr errorPayload
	require.NoError(t, json.Unmarshal(a.next(core.TypeError).Data, &perr))
	assert.Equal(t, "invalid_payload", perr.Error)
}

func TestRoomRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	rl := NewRoomRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(11 * time.Second)
	assert.True(t, rl.Allow("a"))

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	assert.True(t, NewRoomRateLimiter(0, time.Second).Allow("x"))
}
