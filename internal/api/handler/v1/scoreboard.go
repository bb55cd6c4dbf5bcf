package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clubescore/ranking-api/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type scoreboardClient struct {
	conn *websocket.Conn
	send chan []byte
	slug string
}

type scoreboardUpdate struct {
	slug    string
	payload []byte
}

// ScoreboardHandler pushes the refreshed ranking of a unit to every
// websocket subscriber of that unit after each score mutation.
type ScoreboardHandler struct {
	svc          ScoringService
	clients      map[string]map[*scoreboardClient]bool
	clientsMutex sync.RWMutex
	broadcast    chan scoreboardUpdate
	register     chan *scoreboardClient
	unregister   chan *scoreboardClient
}

func NewScoreboardHandler(svc ScoringService) *ScoreboardHandler {
	return &ScoreboardHandler{
		svc:        svc,
		clients:    make(map[string]map[*scoreboardClient]bool),
		broadcast:  make(chan scoreboardUpdate),
		register:   make(chan *scoreboardClient),
		unregister: make(chan *scoreboardClient),
	}
}

func (h *ScoreboardHandler) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			if h.clients[client.slug] == nil {
				h.clients[client.slug] = make(map[*scoreboardClient]bool)
			}
			h.clients[client.slug][client] = true
			h.clientsMutex.Unlock()
			metrics.ScoreboardClients.Inc()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client.slug][client]; ok {
				delete(h.clients[client.slug], client)
				close(client.send)
				metrics.ScoreboardClients.Dec()
			}
			h.clientsMutex.Unlock()
		case update := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients[update.slug] {
				select {
				case client.send <- update.payload:
				default:
					delete(h.clients[update.slug], client)
					close(client.send)
					metrics.ScoreboardClients.Dec()
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

// NotifyRankingChanged recomputes the unit's ranking and fans it out.
// It never blocks the mutating request.
func (h *ScoreboardHandler) NotifyRankingChanged(slug string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ranked, err := h.svc.Ranking(ctx, slug)
		if err != nil {
			zap.L().Warn("scoreboard refresh failed",
				zap.String("unit", slug),
				zap.Error(err),
			)

			return
		}

		payload, err := json.Marshal(gin.H{
			"type":    "ranking",
			"unit":    slug,
			"ranking": ranked,
		})
		if err != nil {
			return
		}

		h.broadcast <- scoreboardUpdate{slug: slug, payload: payload}
	}()
}

// HandleScoreboard godoc
// @Summary      Subscribe to a unit's live scoreboard
// @Description  Establishes a websocket that receives the refreshed ranking after every score mutation
// @Tags         ranking
// @Produce      json
// @Param        slug  path  string  true  "unit slug"
// @Success      101 {string} string "Switching Protocols to WebSocket"
// @Failure      400 {object} response.Err
// @Failure      500 {object} response.Err
// @Router       /units/{slug}/scoreboard [get]
// @Security     BearerAuth
func (h *ScoreboardHandler) HandleScoreboard(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))

		return
	}

	client := &scoreboardClient{
		conn: conn,
		send: make(chan []byte, 256),
		slug: c.Param("slug"),
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)

	// Seed the new subscriber with the current standing.
	h.NotifyRankingChanged(client.slug)
}

func (c *scoreboardClient) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards everything; the feed is one-way. Its job is to notice
// the close and unregister.
func (c *scoreboardClient) readPump(h *ScoreboardHandler) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("scoreboard read error", zap.Error(err))
			}
			break
		}
	}
}
