/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/gamenight/answer"
)

func newTestClient(h *Hub, playerID string) *Client {
	c := &Client{send: make(chan any, 64), playerID: playerID}
	h.handleRegister(c)
	return c
}

// drain returns every message queued for c so far.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func lastOf[T any](t *testing.T, msgs []any) T {
	t.Helper()

	for i := len(msgs) - 1; i >= 0; i-- {
		if msg, ok := msgs[i].(T); ok {
			return msg
		}
	}

	var zero T
	t.Fatalf("no %T in %d messages", zero, len(msgs))
	return zero
}

func setupBoard(t *testing.T) (*Hub, *Client, *Client) {
	t.Helper()

	cfg := testConfig()
	h := newHub("test")

	host := newTestClient(h, "host")
	alice := newTestClient(h, "alice")

	h.handleJoin(cfg, clientRequest{client: alice, msg: ClientMessage{Type: "join", Username: "Alice"}})
	h.handleHostCommand(cfg, clientRequest{client: host, msg: ClientMessage{
		Type:     "set_board",
		Question: "Name a fruit",
		Answers: []BoardAnswer{
			{Text: "Banana", Points: 40},
			{Text: "Tomato", Aliases: []string{"tomatoes"}, Points: 25},
			{Text: "Apple", Points: 20},
		},
	}})

	drain(host)
	drain(alice)

	return h, host, alice
}

func guess(h *Hub, c *Client, text string) {
	h.handleGuess(testConfig(), clientRequest{client: c, msg: ClientMessage{Type: "guess", Guess: text}})
}

func TestFirstClientIsHost(t *testing.T) {
	h := newHub("test")

	host := newTestClient(h, "host")
	player := newTestClient(h, "player")

	assert.True(t, lastOf[SessionInfoMessage](t, drain(host)).IsHost)
	assert.False(t, lastOf[SessionInfoMessage](t, drain(player)).IsHost)
}

func TestBoardHidesAnswersFromPlayers(t *testing.T) {
	h, host, alice := setupBoard(t)

	h.mu.Lock()
	h.broadcastBoardLocked()
	h.mu.Unlock()

	hostView := lastOf[BoardStateMessage](t, drain(host))
	playerView := lastOf[BoardStateMessage](t, drain(alice))

	assert.Equal(t, "Name a fruit", playerView.Question)
	require.Len(t, playerView.Answers, 3)
	for _, slot := range playerView.Answers {
		assert.Empty(t, slot.Text)
		assert.Zero(t, slot.Points)
	}
	assert.Equal(t, "Banana", hostView.Answers[0].Text)
	assert.Equal(t, 40, hostView.Answers[0].Points)
}

func TestGuessRevealsAnswer(t *testing.T) {
	h, _, alice := setupBoard(t)

	guess(h, alice, "tomatoe")

	msgs := drain(alice)
	result := lastOf[GuessResultMessage](t, msgs)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.AnswerIndex)
	assert.Equal(t, "Tomato", result.Answer)
	assert.Equal(t, answer.Exact, result.Confidence)
	assert.Equal(t, 25, result.Points)

	state := lastOf[BoardStateMessage](t, msgs)
	assert.True(t, state.Answers[1].Revealed)
	assert.Equal(t, "Tomato", state.Answers[1].Text)
	assert.Equal(t, []PlayerScore{{Username: "Alice", Score: 25}}, state.Scores)
}

func TestRevealedAnswerCannotScoreTwice(t *testing.T) {
	h, _, alice := setupBoard(t)

	guess(h, alice, "banana")
	drain(alice)
	guess(h, alice, "banana")

	result := lastOf[GuessResultMessage](t, drain(alice))
	assert.False(t, result.Correct)
	assert.Equal(t, -1, result.AnswerIndex)
	assert.Equal(t, 1, result.Strikes)
	assert.Equal(t, 40, h.players[0].Score)
}

func TestThreeStrikesClosesBoard(t *testing.T) {
	h, host, alice := setupBoard(t)

	for _, g := range []string{"xyz", "qqq", "zzz"} {
		guess(h, alice, g)
	}
	assert.Equal(t, maxStrikes, h.strikes)
	drain(alice)

	guess(h, alice, "banana")
	msg := lastOf[SimpleMessage](t, drain(alice))
	assert.Equal(t, "board_closed", msg.Type)
	assert.False(t, h.board[0].Revealed)

	h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{
		Type:    "set_board",
		Answers: []BoardAnswer{{Text: "Dog", Points: 10}},
	}})
	assert.Zero(t, h.strikes)

	guess(h, alice, "dogs")
	assert.True(t, lastOf[GuessResultMessage](t, drain(alice)).Correct)
}

func TestGuessWithoutBoard(t *testing.T) {
	cfg := testConfig()
	h := newHub("test")
	newTestClient(h, "host")
	alice := newTestClient(h, "alice")
	h.handleJoin(cfg, clientRequest{client: alice, msg: ClientMessage{Type: "join", Username: "Alice"}})
	drain(alice)

	guess(h, alice, "banana")

	assert.Equal(t, "no_board", lastOf[SimpleMessage](t, drain(alice)).Type)
}

func TestHostCannotGuessOrJoin(t *testing.T) {
	h, host, _ := setupBoard(t)

	h.handleJoin(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "join", Username: "Host"}})
	guess(h, host, "banana")

	assert.Len(t, h.players, 1)
	assert.False(t, h.board[0].Revealed)
	assert.Empty(t, drain(host))
}

func TestSetBoardValidation(t *testing.T) {
	tests := []struct {
		name    string
		answers []BoardAnswer
		errMsg  string
	}{
		{"empty", nil, "at least one"},
		{"too many", make([]BoardAnswer, maxBoardAnswers+1), "at most 8"},
		{"blank text", []BoardAnswer{{Text: "Dog"}, {Text: " ?! "}}, "answer 2 has no text"},
		{"negative points", []BoardAnswer{{Text: "Dog", Points: -1}}, "negative points"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, host, _ := setupBoard(t)

			h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "set_board", Answers: tt.answers}})

			msg := lastOf[SimpleMessage](t, drain(host))
			assert.Equal(t, "board_error", msg.Type)
			assert.Contains(t, msg.Message, tt.errMsg)
			assert.Len(t, h.board, 3)
		})
	}
}

func TestPlayersCannotIssueHostCommands(t *testing.T) {
	h, _, alice := setupBoard(t)

	idx := 0
	h.handleHostCommand(testConfig(), clientRequest{client: alice, msg: ClientMessage{Type: "reveal", Index: &idx}})

	assert.False(t, h.board[0].Revealed)
}

func TestHostReveal(t *testing.T) {
	h, host, alice := setupBoard(t)

	for _, idx := range []int{-1, 3, 2} {
		h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "reveal", Index: &idx}})
	}

	state := lastOf[BoardStateMessage](t, drain(alice))
	assert.True(t, state.Answers[2].Revealed)
	assert.Equal(t, "Apple", state.Answers[2].Text)
	assert.False(t, state.Answers[0].Revealed)
}

func TestFastMoney(t *testing.T) {
	h, host, alice := setupBoard(t)

	h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "fast_money", First: "cellphone", Second: "cell phone"}})
	assert.True(t, lastOf[FastMoneyResultMessage](t, drain(host)).Duplicate)

	h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "fast_money", First: "pizza", Second: "pasta"}})
	assert.False(t, lastOf[FastMoneyResultMessage](t, drain(host)).Duplicate)

	assert.Empty(t, drain(alice))
}

func TestJoinCollisionAndLock(t *testing.T) {
	h, host, _ := setupBoard(t)
	cfg := testConfig()

	bob := newTestClient(h, "bob")
	drain(bob)
	h.handleJoin(cfg, clientRequest{client: bob, msg: ClientMessage{Type: "join", Username: "alice"}})
	assert.Equal(t, "collision", lastOf[CollisionMessage](t, drain(bob)).Type)

	locked := true
	h.handleHostCommand(cfg, clientRequest{client: host, msg: ClientMessage{Type: "lock_lobby", Lock: &locked}})
	assert.True(t, lastOf[LobbyStateMessage](t, drain(bob)).Locked)

	h.handleJoin(cfg, clientRequest{client: bob, msg: ClientMessage{Type: "join", Username: "Bob"}})
	assert.Equal(t, "lobby_locked", lastOf[SimpleMessage](t, drain(bob)).Type)
	assert.Len(t, h.players, 1)
}

func TestKick(t *testing.T) {
	h, host, alice := setupBoard(t)

	h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "kick", TargetUsername: "Alice"}})

	msgs := drain(alice)
	assert.Equal(t, "kicked", lastOf[SimpleMessage](t, msgs).Type)
	assert.Empty(t, h.players)
	assert.False(t, h.clients[alice])

	// A dropped client is ignored rather than written to.
	guess(h, alice, "banana")
	assert.False(t, h.board[0].Revealed)
}

func TestKickIgnoresCase(t *testing.T) {
	h, host, alice := setupBoard(t)

	h.handleHostCommand(testConfig(), clientRequest{client: host, msg: ClientMessage{Type: "kick", TargetUsername: "aLiCe"}})

	assert.Equal(t, "kicked", lastOf[SimpleMessage](t, drain(alice)).Type)
	assert.Empty(t, h.players)
}

func TestScheduleRemoval(t *testing.T) {
	h, _, alice := setupBoard(t)

	h.mu.Lock()
	h.dropLocked(alice)
	h.mu.Unlock()

	h.scheduleRemoval("alice", 0)

	assert.Empty(t, h.players)
}

func TestReapIdle(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	hub := gm.getHub("old")
	assert.Same(t, hub, gm.getHub("old"))

	assert.Zero(t, gm.reapIdle(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, gm.reapIdle(time.Now().Add(time.Hour)))
	assert.True(t, hub.closed())
	assert.NotSame(t, hub, gm.getHub("old"))
}

func TestReapStopsHubLoop(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	hub := newHub("old")
	gm.hubs["old"] = hub

	exited := make(chan struct{})
	go func() {
		hub.run(cfg)
		close(exited)
	}()

	client := &Client{send: make(chan any, 4), playerID: "p1"}
	require.True(t, offer(hub, hub.register, client))

	require.Equal(t, 1, gm.reapIdle(time.Now().Add(time.Hour)))

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("hub loop still running after reap")
	}

	// Nothing is left to receive, so senders must not block.
	assert.False(t, offer(hub, hub.unreg, client))
	assert.False(t, offer(hub, hub.inbox("guess"), clientRequest{client: client}))

	_, open := <-client.send
	for open {
		_, open = <-client.send
	}

	hub.closeAll()
}

func TestRegisterAfterClose(t *testing.T) {
	h := newHub("test")
	h.closeAll()

	c := &Client{send: make(chan any, 4), playerID: "late"}
	h.handleRegister(c)

	assert.Empty(t, h.clients)
	assert.Empty(t, h.hostPlayerID)

	_, open := <-c.send
	assert.False(t, open)
}

func TestInbox(t *testing.T) {
	h := newHub("test")

	assert.Equal(t, h.joins, h.inbox("join"))
	assert.Equal(t, h.guesses, h.inbox("guess"))
	for _, kind := range []string{"set_board", "lock_lobby", "kick", "reveal", "fast_money"} {
		assert.Equal(t, h.hosts, h.inbox(kind), kind)
	}
	assert.Nil(t, h.inbox("shout"))
}

func TestNewGameID(t *testing.T) {
	gm := newGameManager(testConfig())

	id, err := gm.newGameID()
	require.NoError(t, err)
	assert.Len(t, id, gameIDLength)

	other, err := gm.newGameID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestRandomString(t *testing.T) {
	id, err := randomString(playerIDAlphabet, playerIDLength)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, id)

	id, err = randomString(gameIDAlphabet, gameIDLength)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z0-9]{8}$`, id)
}

func TestBoardURL(t *testing.T) {
	tests := []struct {
		name  string
		proto string
		tls   bool
		want  string
	}{
		{"plain", "", false, "http://example.com/feud/AbCd1234"},
		{"tls", "", true, "https://example.com/feud/AbCd1234"},
		{"forwarded https", "https", false, "https://example.com/feud/AbCd1234"},
		{"forwarded mixed case", " HTTPS ", false, "https://example.com/feud/AbCd1234"},
		{"forwarded http over tls", "http", true, "http://example.com/feud/AbCd1234"},
		{"forwarded junk", "javascript", false, "http://example.com/feud/AbCd1234"},
		{"forwarded junk over tls", "ftp", true, "https://example.com/feud/AbCd1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/feud/AbCd1234/qr", nil)
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tt.proto)
			}

			assert.Equal(t, tt.want, boardURL(r))
		})
	}
}

func TestFeudRoutes(t *testing.T) {
	mux := newRouter(testConfig(), make(chan error, 1))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/feud", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	location := rr.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/feud/"), location)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `src="../assets/feud/app.js"`)
	assert.NotEmpty(t, rr.Result().Cookies())

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, location+"/qr", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "default-src 'self'", rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/feud/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFeudRoutesWithPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/games/"
	mux := newRouter(cfg, make(chan error, 1))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/games/feud", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	location := rr.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/games/feud/"), location)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "/games/", cookies[0].Path)

	// Resolve each asset reference against the page URL, as a browser would.
	page, err := url.Parse("http://example.com" + location)
	require.NoError(t, err)

	for _, ref := range []string{"../assets/feud/app.css", "../assets/feud/app.js"} {
		require.Contains(t, rr.Body.String(), `"`+ref+`"`)

		target, err := page.Parse(ref)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(target.Path, "/games/assets/feud/"), target.Path)

		asset := httptest.NewRecorder()
		mux.ServeHTTP(asset, httptest.NewRequest(http.MethodGet, target.Path, nil))
		assert.Equal(t, http.StatusOK, asset.Code, target.Path)
	}
}
