package present

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/honeyhive/server/internal/economy"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Message is the JSON envelope for every outbound websocket frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Outbound message types.
const (
	MsgResources    = "resources"
	MsgCard         = "card"
	MsgCardLocked   = "card_locked"
	MsgCardRevealed = "card_revealed"
	MsgLevelUp      = "level_up"
	MsgSpawn        = "spawn"
	MsgEntities     = "entities"
	MsgAchievement  = "achievement"
	MsgReset        = "reset"
)

// HubConfig tunes the websocket bridge.
type HubConfig struct {
	OutQueueSize      int
	ClientBuffer      int
	CommandQueueSize  int
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	RateLimited       bool
	CommandsPerSecond float64
	Burst             int
}

type outbound struct {
	key  string // non-empty for state frames replayed to late joiners
	data []byte
}

// Client is one websocket connection.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// Hub is a Presenter that broadcasts views to websocket clients and queues
// their commands for the input phase. Presenter methods run on the game loop;
// the client registry is owned by Run.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	commands   *Queue

	// state frames by key, replayed to new clients. Owned by Run.
	cache map[string][]byte
	order []string

	cfg      HubConfig
	log      *zap.Logger
	upgrader websocket.Upgrader
	online   atomic.Int32
	dropped  atomic.Int64

	// game loop only
	next  Handle
	speed func() float64
}

func NewHub(cfg HubConfig, log *zap.Logger) *Hub {
	if cfg.OutQueueSize < 1 {
		cfg.OutQueueSize = 256
	}
	if cfg.ClientBuffer < 1 {
		cfg.ClientBuffer = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, cfg.OutQueueSize),
		done:       make(chan struct{}),
		commands:   NewQueue(cfg.CommandQueueSize),
		cache:      make(map[string][]byte),
		cfg:        cfg,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run owns the client registry until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.online.Store(0)
			return nil

		case c := <-h.register:
			h.clients[c] = true
			h.online.Add(1)
			for _, key := range h.order {
				select {
				case c.send <- h.cache[key]:
				default:
				}
			}
			h.log.Info("websocket client connected", zap.String("client", c.id))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.online.Add(-1)
				h.log.Info("websocket client disconnected", zap.String("client", c.id))
			}

		case m := <-h.broadcast:
			h.remember(m)
			for c := range h.clients {
				select {
				case c.send <- m.data:
				default:
					// slow client
					close(c.send)
					delete(h.clients, c)
					h.online.Add(-1)
					h.log.Warn("websocket client dropped", zap.String("client", c.id))
				}
			}
		}
	}
}

func (h *Hub) remember(m outbound) {
	if m.key == MsgReset {
		h.cache = make(map[string][]byte)
		h.order = h.order[:0]
		return
	}
	if m.key == "" {
		return
	}
	if _, ok := h.cache[m.key]; !ok {
		h.order = append(h.order, m.key)
	}
	h.cache[m.key] = m.data
}

// Online is the number of connected clients.
func (h *Hub) Online() int { return int(h.online.Load()) }

// Dropped counts frames discarded because the broadcast queue was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Drain hands queued client commands to the input phase.
func (h *Hub) Drain(max int) []Command { return h.commands.Drain(max) }

// ServeHTTP upgrades the request and starts the client pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.ClientBuffer),
	}
	if h.cfg.RateLimited {
		c.limiter = rate.NewLimiter(rate.Limit(h.cfg.CommandsPerSecond), h.cfg.Burst)
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (h *Hub) publish(key, typ string, payload any) {
	data, err := json.Marshal(Message{Type: typ, Payload: payload})
	if err != nil {
		h.log.Error("encode websocket message", zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{key: key, data: data}:
	default:
		h.dropped.Add(1)
		h.log.Debug("broadcast queue full", zap.String("type", typ))
	}
}

func (h *Hub) Spawn(kind economy.Kind) Handle {
	h.next++
	h.publish("", MsgSpawn, EntityView{Handle: h.next, Kind: kind})
	return h.next
}

func (h *Hub) SetSpeedMultiplier(fn func() float64) { h.speed = fn }

// Speed evaluates the installed multiplier, or 1 when none is set.
func (h *Hub) Speed() float64 {
	if h.speed == nil {
		return 1
	}
	return h.speed()
}

func (h *Hub) RefreshResources(v ResourceView) { h.publish(MsgResources, MsgResources, v) }

func (h *Hub) RefreshCard(v CardView) {
	h.publish(MsgCard+":"+string(v.Kind), MsgCard, v)
}

func (h *Hub) SetCardLocked(v LockView) {
	h.publish(MsgCardLocked+":"+string(v.Kind), MsgCardLocked, v)
}

func (h *Hub) RevealCard(v CardView) {
	h.publish(MsgCardRevealed+":"+string(v.Kind), MsgCardRevealed, v)
}

func (h *Hub) LevelUp(level int) {
	h.publish("", MsgLevelUp, map[string]int{"level": level})
}

func (h *Hub) MoveEntities(vs []EntityView) { h.publish(MsgEntities, MsgEntities, vs) }

func (h *Hub) AchievementUnlocked(id, title string) {
	h.publish("", MsgAchievement, map[string]string{"id": id, "title": title})
}

func (h *Hub) Reset() {
	h.next = 0
	h.publish(MsgReset, MsgReset, nil)
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		cmd, err := ParseCommand(raw)
		if err != nil {
			c.hub.log.Debug("bad command", zap.String("client", c.id), zap.Error(err))
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.hub.log.Debug("command rate limited", zap.String("client", c.id))
			continue
		}
		cmd.Client = c.id
		if !c.hub.commands.Push(cmd) {
			c.hub.log.Warn("command queue full", zap.String("client", c.id))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.ReadTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
