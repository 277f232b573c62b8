/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Family Feud answer board
//
// The host puts a survey question and up to eight answers on the board. Players
// type guesses; each guess is matched against the answers still hidden, and a
// match reveals that answer and credits the guesser with its points. Misses
// count as strikes, and three strikes close the board until the host sets a
// new one.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - First connection to a game becomes the host
// - Host sees every answer; players only see revealed ones
// - Host can lock/unlock the lobby, kick players and reveal answers by hand
// - Host can check Fast Money answer pairs for duplicates
// - Players identified by cookie (playerID), scoped to the site prefix
// - Duplicate usernames prevented across players
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - QR code for the current board URL, backed by go-qrcode

package main

import (
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/gamenight/answer"
)

const (
	maxBoardAnswers = 8
	maxStrikes      = 3
)

// Player holds the data we store server-side
type Player struct {
	PlayerID string
	Username string
	Score    int
}

// BoardAnswer is one survey answer as the host submits it.
type BoardAnswer struct {
	Text    string   `json:"text"`
	Aliases []string `json:"aliases,omitempty"`
	Points  int      `json:"points"`
}

// Messages coming from clients
type ClientMessage struct {
	Type           string        `json:"type"`                      // "join", "guess", "set_board", "lock_lobby", "kick", "reveal", "fast_money"
	Username       string        `json:"username,omitempty"`        // join
	Guess          string        `json:"guess,omitempty"`           // guess
	Question       string        `json:"question,omitempty"`        // set_board
	Answers        []BoardAnswer `json:"answers,omitempty"`         // set_board
	Lock           *bool         `json:"lock,omitempty"`            // lock_lobby
	TargetUsername string        `json:"target_username,omitempty"` // kick
	Index          *int          `json:"index,omitempty"`           // reveal
	First          string        `json:"first,omitempty"`           // fast_money
	Second         string        `json:"second,omitempty"`          // fast_money
}

// Sent to a single client when their username is taken
type CollisionMessage struct {
	Type    string `json:"type"`    // "collision"
	Field   string `json:"field"`   // "username"
	Message string `json:"message"` // user-facing text
}

// SimpleMessage is for generic notifications ("kicked", "lobby_locked", etc.)
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LobbyStateMessage informs clients about lock/unlock changes.
type LobbyStateMessage struct {
	Type   string `json:"type"` // "lobby_state"
	Locked bool   `json:"locked"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// whether the lobby is locked and what role this cookie has.
type SessionInfoMessage struct {
	Type        string `json:"type"`               // "session_info"
	LobbyLocked bool   `json:"lobby_locked"`       // current lobby lock state
	IsExisting  bool   `json:"is_existing"`        // true if this cookie already has a player
	IsHost      bool   `json:"is_host"`            // true if this cookie is the host
	Username    string `json:"username,omitempty"` // known username for this cookie, if any
}

// BoardSlot is one answer position; text and points stay hidden from
// players until the answer is revealed.
type BoardSlot struct {
	Index    int    `json:"index"`
	Text     string `json:"text,omitempty"`
	Points   int    `json:"points,omitempty"`
	Revealed bool   `json:"revealed"`
}

type PlayerScore struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// BoardStateMessage is broadcast whenever the board, strikes or scores change.
type BoardStateMessage struct {
	Type        string        `json:"type"` // "board_state"
	Question    string        `json:"question"`
	Answers     []BoardSlot   `json:"answers"`
	Strikes     int           `json:"strikes"`
	Scores      []PlayerScore `json:"scores"`
	LobbyLocked bool          `json:"lobby_locked"`
}

// GuessResultMessage informs everyone about a guess outcome.
type GuessResultMessage struct {
	Type        string            `json:"type"` // "guess_result"
	Correct     bool              `json:"correct"`
	Guesser     string            `json:"guesser"`
	Guess       string            `json:"guess"`
	AnswerIndex int               `json:"answer_index"`
	Answer      string            `json:"answer,omitempty"`
	Confidence  answer.Confidence `json:"confidence"`
	Points      int               `json:"points,omitempty"`
	Strikes     int               `json:"strikes"`
}

// FastMoneyResultMessage is sent to the host only.
type FastMoneyResultMessage struct {
	Type      string `json:"type"` // "fast_money_result"
	First     string `json:"first"`
	Second    string `json:"second"`
	Duplicate bool   `json:"duplicate"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type clientRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	clients map[*Client]bool
	players []Player

	register chan *Client
	unreg    chan *Client
	joins    chan clientRequest
	hosts    chan clientRequest
	guesses  chan clientRequest

	// done is closed once the hub is reaped; run exits and senders give up.
	done chan struct{}
	stop sync.Once

	mu sync.RWMutex

	createdAt    time.Time
	lastActive   time.Time
	lobbyLocked  bool
	hostPlayerID string // cookie/playerID of the host (never in players)

	question string
	board    []answer.Answer
	points   []int
	strikes  int
}

func newHub(gameID string) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		joins:      make(chan clientRequest),
		hosts:      make(chan clientRequest),
		guesses:    make(chan clientRequest),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				h.dropLocked(c)
			}
			playerID := c.playerID
			isHost := (playerID == h.hostPlayerID)
			h.mu.Unlock()

			// The host leaving does not end the board.
			if playerID != "" && !isHost {
				go h.scheduleRemoval(playerID, cfg.playerTimeout)
			}

		case req := <-h.joins:
			h.handleJoin(cfg, req)

		case req := <-h.hosts:
			h.handleHostCommand(cfg, req)

		case req := <-h.guesses:
			h.handleGuess(cfg, req)
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A register that raced the reaper still has a writePump to release.
	if h.closed() {
		close(c.send)
		return
	}

	h.lastActive = time.Now()

	// First connection becomes the host
	if h.hostPlayerID == "" {
		h.hostPlayerID = c.playerID
	}

	isExisting := false
	existingName := ""
	if p := h.playerLocked(c.playerID); p != nil {
		isExisting = true
		existingName = p.Username
	}

	h.clients[c] = true

	// Send session_info first, so client decides whether/how to prompt.
	if !h.sendLocked(c, SessionInfoMessage{
		Type:        "session_info",
		LobbyLocked: h.lobbyLocked,
		IsExisting:  isExisting,
		IsHost:      c.playerID == h.hostPlayerID,
		Username:    existingName,
	}) {
		return
	}

	h.sendLocked(c, h.boardStateLocked(c.playerID == h.hostPlayerID))
}

// sendLocked queues msg for c, dropping the client if its buffer is full.
func (h *Hub) sendLocked(c *Client, msg any) bool {
	if !h.clients[c] {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		h.dropLocked(c)
		return false
	}
}

func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

func (h *Hub) playerLocked(playerID string) *Player {
	for i := range h.players {
		if h.players[i].PlayerID == playerID {
			return &h.players[i]
		}
	}
	return nil
}

func (h *Hub) boardStateLocked(host bool) BoardStateMessage {
	slots := make([]BoardSlot, len(h.board))
	for i, a := range h.board {
		slots[i] = BoardSlot{Index: i, Revealed: a.Revealed}
		if a.Revealed || host {
			slots[i].Text = a.Text
			slots[i].Points = h.points[i]
		}
	}

	scores := make([]PlayerScore, 0, len(h.players))
	for _, p := range h.players {
		scores = append(scores, PlayerScore{Username: p.Username, Score: p.Score})
	}

	return BoardStateMessage{
		Type:        "board_state",
		Question:    h.question,
		Answers:     slots,
		Strikes:     h.strikes,
		Scores:      scores,
		LobbyLocked: h.lobbyLocked,
	}
}

// broadcastBoardLocked sends the board to every client, with hidden answers
// filled in for the host only.
func (h *Hub) broadcastBoardLocked() {
	hostView := h.boardStateLocked(true)
	playerView := h.boardStateLocked(false)

	for client := range h.clients {
		if client.playerID == h.hostPlayerID {
			h.sendLocked(client, hostView)
		} else {
			h.sendLocked(client, playerView)
		}
	}
}

// scheduleRemoval waits for d, and if no client with this playerID
// is currently connected, removes that player's entry and broadcasts
// the updated scores.
func (h *Hub) scheduleRemoval(playerID string, d time.Duration) {
	time.Sleep(d)

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.playerID == playerID {
			return
		}
	}

	if !h.removePlayerLocked(func(p Player) bool { return p.PlayerID == playerID }) {
		return
	}

	h.lastActive = time.Now()

	h.broadcastBoardLocked()
}

// removePlayerLocked deletes the first player matching and reports whether
// one was found.
func (h *Hub) removePlayerLocked(match func(Player) bool) bool {
	for i, p := range h.players {
		if match(p) {
			h.players = append(h.players[:i], h.players[i+1:]...)
			return true
		}
	}
	return false
}

// handleJoin processes "join" messages.
func (h *Hub) handleJoin(cfg *Config, req clientRequest) {
	c := req.client
	username := strings.TrimSpace(req.msg.Username)

	if username == "" || c.playerID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if c.playerID == h.hostPlayerID {
		return
	}

	existing := h.playerLocked(c.playerID)

	if h.lobbyLocked && existing == nil {
		h.sendLocked(c, SimpleMessage{
			Type:    "lobby_locked",
			Message: "The lobby is locked; no new players may join.",
		})
		return
	}

	for _, p := range h.players {
		if p.PlayerID != c.playerID && strings.EqualFold(p.Username, username) {
			h.sendLocked(c, CollisionMessage{
				Type:    "collision",
				Field:   "username",
				Message: "That username is already taken. Please choose a different username.",
			})
			return
		}
	}

	if existing != nil {
		existing.Username = username
	} else {
		h.players = append(h.players, Player{
			PlayerID: c.playerID,
			Username: username,
		})
		logf(cfg, "GAMES: Player %q joined %s", username, h.id)
	}

	h.broadcastBoardLocked()
}

// handleGuess matches a player's guess against the answers still hidden.
func (h *Hub) handleGuess(cfg *Config, req clientRequest) {
	c := req.client
	guess := strings.TrimSpace(req.msg.Guess)

	if c.playerID == "" || guess == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	guesser := h.playerLocked(c.playerID)
	if guesser == nil {
		return
	}

	if len(h.board) == 0 {
		h.sendLocked(c, SimpleMessage{
			Type:    "no_board",
			Message: "The host has not put a question on the board yet.",
		})
		return
	}

	if h.strikes >= maxStrikes {
		h.sendLocked(c, SimpleMessage{
			Type:    "board_closed",
			Message: "Three strikes! Wait for the host to put up the next question.",
		})
		return
	}

	match := answer.FindMatch(guess, h.board)

	result := GuessResultMessage{
		Type:        "guess_result",
		Correct:     match.Matched,
		Guesser:     guesser.Username,
		Guess:       guess,
		AnswerIndex: match.Index,
		Confidence:  match.Confidence,
	}

	if match.Matched {
		h.board[match.Index].Revealed = true
		guesser.Score += h.points[match.Index]

		result.Answer = h.board[match.Index].Text
		result.Points = h.points[match.Index]

		logf(cfg, "GAMES: %q revealed %q (%s) in %s", guesser.Username, result.Answer, match.Confidence, h.id)
	} else {
		h.strikes++

		logf(cfg, "GAMES: %q missed with %q in %s (strike %d)", guesser.Username, guess, h.id, h.strikes)
	}

	result.Strikes = h.strikes

	h.broadcastLocked(result)
	h.broadcastBoardLocked()
}

// validateBoard checks a board submitted by the host.
func validateBoard(answers []BoardAnswer) error {
	switch {
	case len(answers) == 0:
		return errors.New("a board needs at least one answer")
	case len(answers) > maxBoardAnswers:
		return fmt.Errorf("a board holds at most %d answers", maxBoardAnswers)
	}

	for i, a := range answers {
		if answer.Normalize(a.Text) == "" {
			return fmt.Errorf("answer %d has no text", i+1)
		}
		if a.Points < 0 {
			return fmt.Errorf("answer %d has negative points", i+1)
		}
	}

	return nil
}

// handleHostCommand processes host commands: set the board, lock/unlock the
// lobby, kick players, reveal answers and check Fast Money pairs.
func (h *Hub) handleHostCommand(cfg *Config, req clientRequest) {
	c := req.client
	msg := req.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	// Only the host may issue these commands
	if h.hostPlayerID == "" || c.playerID != h.hostPlayerID {
		return
	}

	switch msg.Type {
	case "set_board":
		if err := validateBoard(msg.Answers); err != nil {
			h.sendLocked(c, SimpleMessage{
				Type:    "board_error",
				Message: err.Error(),
			})
			return
		}

		h.question = strings.TrimSpace(msg.Question)
		h.board = make([]answer.Answer, len(msg.Answers))
		h.points = make([]int, len(msg.Answers))
		for i, a := range msg.Answers {
			h.board[i] = answer.Answer{Text: strings.TrimSpace(a.Text), Aliases: a.Aliases}
			h.points[i] = a.Points
		}
		h.strikes = 0

		logf(cfg, "GAMES: New board with %d answers in %s", len(h.board), h.id)

		h.broadcastBoardLocked()

	case "lock_lobby":
		h.lobbyLocked = msg.Lock != nil && *msg.Lock

		h.broadcastLocked(LobbyStateMessage{
			Type:   "lobby_state",
			Locked: h.lobbyLocked,
		})

	case "kick":
		target := msg.TargetUsername
		if target == "" {
			return
		}

		kickedPlayerID := ""
		if !h.removePlayerLocked(func(p Player) bool {
			if strings.EqualFold(p.Username, target) {
				kickedPlayerID = p.PlayerID
				return true
			}
			return false
		}) {
			return
		}

		for client := range h.clients {
			if client.playerID == kickedPlayerID {
				if h.sendLocked(client, SimpleMessage{
					Type:    "kicked",
					Message: "You have been removed by the host.",
				}) {
					h.dropLocked(client)
				}
			}
		}

		h.broadcastBoardLocked()

	case "reveal":
		if msg.Index == nil || *msg.Index < 0 || *msg.Index >= len(h.board) {
			return
		}

		h.board[*msg.Index].Revealed = true

		h.broadcastBoardLocked()

	case "fast_money":
		h.sendLocked(c, FastMoneyResultMessage{
			Type:      "fast_money_result",
			First:     msg.First,
			Second:    msg.Second,
			Duplicate: answer.IsDuplicate(msg.First, msg.Second),
		})
	}
}

// closeAll stops the hub loop and disconnects every client. Calling it again
// is harmless.
func (h *Hub) closeAll() {
	h.stop.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.dropLocked(c)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// offer hands v to the hub loop, giving up once the hub has been closed.
func offer[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

// inbox returns the hub channel serving a message type, or nil for types the
// board does not understand.
func (h *Hub) inbox(kind string) chan clientRequest {
	switch kind {
	case "join":
		return h.joins
	case "guess":
		return h.guesses
	case "set_board", "lock_lobby", "kick", "reveal", "fast_money":
		return h.hosts
	}
	return nil
}

const (
	playerCookieName = "gamenight_id"
	playerIDAlphabet = "0123456789abcdef"
	playerIDLength   = 32

	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	gameIDLength   = 8

	clientBuffer = 16
	qrSize       = 320
)

// randomString draws n characters from alphabet using crypto/rand.
func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf), nil
}

// playerCookie returns the player ID carried by r, issuing a fresh one
// scoped to the site prefix when there is none.
func playerCookie(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id, err := randomString(playerIDAlphabet, playerIDLength)
	if err != nil {
		logger(cfg).Error("GAMES: Unable to assign player id", "error", err)
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     cfg.prefix + "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager owns one Hub per game ID, so each $path/$gameid is its own
// isolated board.
type GameManager struct {
	cfg *Config

	mu   sync.Mutex
	hubs map[string]*Hub
}

func newGameManager(cfg *Config) *GameManager {
	gm := &GameManager{
		cfg:  cfg,
		hubs: make(map[string]*Hub),
	}

	if cfg.sessionTimeout > 0 {
		go gm.reaperLoop(cfg.sessionTimeout)
	}

	return gm
}

func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	hub, ok := gm.hubs[gameID]
	if !ok {
		hub = newHub(gameID)
		gm.hubs[gameID] = hub
		go hub.run(gm.cfg)
	}

	return hub
}

// newGameID picks a random game ID not already in use.
func (gm *GameManager) newGameID() (string, error) {
	for {
		id, err := randomString(gameIDAlphabet, gameIDLength)
		if err != nil {
			return "", err
		}

		gm.mu.Lock()
		_, taken := gm.hubs[id]
		gm.mu.Unlock()

		if !taken {
			return id, nil
		}
	}
}

// reapIdle closes and forgets every board untouched since cutoff, returning
// how many were removed.
func (gm *GameManager) reapIdle(cutoff time.Time) int {
	gm.mu.Lock()
	idle := make(map[*Hub]time.Time)
	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			idle[hub] = last
		}
	}
	gm.mu.Unlock()

	for hub, last := range idle {
		hub.closeAll()

		logf(gm.cfg, "GAMES: Reaped board %s after %s idle",
			hub.id,
			time.Since(last).Round(time.Second),
		)
	}

	return len(idle)
}

func (gm *GameManager) reaperLoop(idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for now := range ticker.C {
		gm.reapIdle(now.Add(-idle))
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// serveBoardSocket upgrades the connection and attaches it to the board
// named by :gameid.
func serveBoardSocket(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")

		id := playerCookie(cfg, w, r)
		if id == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger(cfg).Warn("GAMES: Websocket upgrade failed", "game", gameID, "error", err)
			return
		}

		hub := gm.getHub(gameID)
		client := &Client{
			conn:     conn,
			send:     make(chan any, clientBuffer),
			playerID: id,
		}

		if !offer(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		offer(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		ch := h.inbox(msg.Type)
		if ch == nil {
			continue
		}

		if !offer(h, ch, clientRequest{client: c, msg: msg}) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// boardURL rebuilds the public address of the board a /qr request belongs
// to. X-Forwarded-Proto is honoured only when it names http or https.
func boardURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	switch proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto {
	case "http", "https":
		scheme = proto
	}

	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   strings.TrimSuffix(r.URL.Path, "/qr"),
	}

	return u.String()
}

// serveBoardQR renders a PNG QR code that players can scan to join.
func serveBoardQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		png, err := qrcode.Encode(boardURL(r), qrcode.Medium, qrSize)
		if err != nil {
			logger(cfg).Error("GAMES: QR generation failed", "error", err)
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

//go:embed feud/index.html
var feudHTML []byte

//go:embed feud/app.css
var feudCSS []byte

//go:embed feud/app.js
var feudJS []byte

type embeddedFile struct {
	contentType string
	data        []byte
}

var feudAssets = map[string]embeddedFile{
	"app.css": {"text/css; charset=utf-8", feudCSS},
	"app.js":  {"application/javascript; charset=utf-8", feudJS},
}

func cacheFor(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(d.Seconds())))
	w.Header().Set("Expires", time.Now().Add(d).UTC().Format(http.TimeFormat))
}

// serveBoardPage returns the board client and makes sure the visitor has a
// player cookie before the websocket opens.
func serveBoardPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		_ = playerCookie(cfg, w, r)

		_, _ = w.Write(feudHTML)
	}
}

func serveFeudAsset(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		asset, ok := feudAssets[ps.ByName("file")]
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", asset.contentType)
		cacheFor(w, time.Hour)
		securityHeaders(cfg, w)

		_, _ = w.Write(asset.data)
	}
}

// redirectNewGame sends GET $path to a freshly allocated $path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID, err := gm.newGameID()
		if err != nil {
			logger(cfg).Error("GAMES: Unable to allocate game id", "error", err)
			http.Error(w, "unable to create game", http.StatusInternalServerError)
			return
		}

		logf(cfg, "GAMES: Created game %s/%s for %s", path, gameID, realIP(r))

		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerFeudGame mounts the board under cfg.prefix+path:
//   - $path                  redirects to a new board
//   - $path/:gameid          board client
//   - $path/:gameid/ws       board websocket
//   - $path/:gameid/qr       QR code for the board URL
//
// The client's stylesheet and script live at /assets/feud/:file.
func registerFeudGame(cfg *Config, path string, mux *httprouter.Router) *GameManager {
	gm := newGameManager(cfg)
	base := cfg.prefix + path

	mux.GET(base, redirectNewGame(cfg, path, gm))
	mux.GET(base+"/:gameid", serveBoardPage(cfg))
	mux.GET(base+"/:gameid/ws", serveBoardSocket(cfg, gm))
	mux.GET(base+"/:gameid/qr", serveBoardQR(cfg))

	mux.GET(cfg.prefix+"/assets/feud/:file", serveFeudAsset(cfg))

	return gm
}
