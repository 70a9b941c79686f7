package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/config"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

func startHub(t *testing.T) (*Hub, *game.Engine, string) {
	t.Helper()
	engine := game.NewEngine(zap.NewNop(), game.WithSeed(31))
	hub := NewHub(config.WebSocketConfig{Path: "/ws"}, engine, true, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, engine, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) testMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg testMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func await(t *testing.T, conn *websocket.Conn, msgType string) testMessage {
	t.Helper()
	for i := 0; i < 100; i++ {
		if msg := next(t, conn); msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message", msgType)
	return testMessage{}
}

func awaitPhase(t *testing.T, conn *websocket.Conn, phase rules.Phase) viewState {
	t.Helper()
	for i := 0; i < 100; i++ {
		v := decodeState(t, await(t, conn, MsgState))
		if v.Phase == phase {
			return v
		}
	}
	t.Fatalf("never reached %s", phase)
	return viewState{}
}

func errorText(t *testing.T, msg testMessage) ErrorData {
	t.Helper()
	require.Equal(t, MsgError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func commandMessage(t *testing.T, payload CommandPayload) map[string]any {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return map[string]any{"type": MsgCommand, "data": json.RawMessage(data)}
}

func TestHubHealthz(t *testing.T) {
	engine := game.NewEngine(nil)
	hub := NewHub(config.WebSocketConfig{}, engine, false, nil)
	rec := httptest.NewRecorder()
	hub.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHubSeatsFourPlayersAndDeals(t *testing.T) {
	hub, engine, url := startHub(t)

	var conns [rules.NumSeats]*websocket.Conn
	conns[0] = dial(t, url)
	require.NoError(t, conns[0].WriteJSON(map[string]any{"type": MsgCreateGame, "game_id": "table-1"}))
	created := next(t, conns[0])
	require.Equal(t, MsgGameCreated, created.Type)
	require.Equal(t, "table-1", created.GameID)
	joined := next(t, conns[0])
	assert.Equal(t, MsgJoined, joined.Type)
	assert.Equal(t, rules.Seat(0), joined.Seat)
	assert.Equal(t, rules.PhaseDealing, decodeState(t, next(t, conns[0])).Phase)

	for seat := 1; seat < rules.NumSeats; seat++ {
		conns[seat] = dial(t, url)
		require.NoError(t, conns[seat].WriteJSON(map[string]any{"type": MsgJoinGame, "game_id": "table-1", "seat": seat}))
		msg := await(t, conns[seat], MsgJoined)
		assert.Equal(t, rules.Seat(seat), msg.Seat)
	}

	for seat, conn := range conns {
		v := awaitPhase(t, conn, rules.PhaseBidding)
		assert.Equal(t, rules.Seat(seat), v.Viewer)
		assert.Equal(t, rules.Seat(1), v.Turn)
		assert.Len(t, v.Hands[seat], cards.HandSize)
		for other := range v.Hands {
			if other != seat {
				assert.Empty(t, v.Hands[other])
			}
		}
	}

	// Out of turn: only the sender hears about it.
	bid := rules.BidFive
	require.NoError(t, conns[3].WriteJSON(commandMessage(t, CommandPayload{Kind: KindBid, Bid: &bid})))
	assert.True(t, errorText(t, next(t, conns[3])).Rejection)

	pass := rules.BidPass
	require.NoError(t, conns[1].WriteJSON(commandMessage(t, CommandPayload{Kind: KindBid, Bid: &pass})))
	first := next(t, conns[0])
	assert.Equal(t, MsgEvents, first.Type)
	v := decodeState(t, next(t, conns[0]))
	assert.Equal(t, []rules.BidEntry{{Seat: 1, Bid: rules.BidPass}}, v.Bids)
	assert.Equal(t, rules.Seat(2), v.Turn)

	// A fifth client cannot take a seat or act.
	extra := dial(t, url)
	require.NoError(t, extra.WriteJSON(map[string]any{"type": MsgJoinGame, "game_id": "table-1", "seat": 2}))
	assert.Contains(t, errorText(t, next(t, extra)).Message, ErrSeatTaken.Error())
	require.NoError(t, extra.WriteJSON(commandMessage(t, CommandPayload{Kind: KindDeal})))
	assert.Contains(t, errorText(t, next(t, extra)).Message, ErrNotSeated.Error())
	require.NoError(t, extra.WriteJSON(map[string]any{"type": MsgJoinGame, "game_id": "nope", "seat": 0}))
	assert.Contains(t, errorText(t, next(t, extra)).Message, game.ErrGameNotFound.Error())
	require.NoError(t, extra.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Contains(t, errorText(t, next(t, extra)).Message, ErrMalformedMessage.Error())
	require.NoError(t, extra.WriteJSON(map[string]any{"type": "dance"}))
	assert.Contains(t, errorText(t, next(t, extra)).Message, "unknown type")

	assert.Equal(t, []string{"table-1"}, hub.Tables())

	// Everyone leaving closes the table and ends the game.
	for _, conn := range conns {
		conn.Close()
	}
	assert.Eventually(t, func() bool {
		return len(hub.Tables()) == 0 && len(engine.GameIDs()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHubCreateGameValidation(t *testing.T) {
	_, _, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": MsgCreateGame, "seat": 9}))
	assert.True(t, errorText(t, next(t, conn)).Rejection)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": MsgCreateGame, "seat": 2}))
	created := next(t, conn)
	require.Equal(t, MsgGameCreated, created.Type)
	assert.NotEmpty(t, created.GameID)
	assert.Equal(t, rules.Seat(2), await(t, conn, MsgJoined).Seat)
	assert.Equal(t, rules.PhaseDealing, decodeState(t, next(t, conn)).Phase)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": MsgCreateGame}))
	assert.Contains(t, errorText(t, next(t, conn)).Message, ErrAlreadySeated.Error())

	require.NoError(t, conn.WriteJSON(map[string]any{"type": MsgJoinGame, "game_id": created.GameID}))
	assert.Contains(t, errorText(t, next(t, conn)).Message, "needs a seat")
}
