package broadcast

import (
	"context"
	"encoding/json"
	"net/http"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const EventTaskUpdate = "taskUpdate"
const EventLogUpdate = "logUpdate"
const EventClientTaskUpdate = "clientTaskUpdate"

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub — реестр socket-подключений с явным жизненным циклом.
// Каждое подключение получает все рассылки: канал не фильтрует
// и не авторизует получателей.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	sendBuffer int
	resync     func(context.Context)
	upgrader   websocket.Upgrader
}

func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// рукопожатие не аутентифицируется
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// OnResync задаёт реакцию на клиентское событие clientTaskUpdate.
// Вызывается один раз при сборке приложения.
func (h *Hub) OnResync(fn func(context.Context)) {
	h.resync = fn
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			logger.Info("Broadcast: Клиент подключён", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Info("Broadcast: Клиент отключён", zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// медленный клиент выбывает, остальные не ждут
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) BroadcastBoard(board models.Board) {
	h.send(Event{Event: EventTaskUpdate, Data: board})
}

func (h *Hub) BroadcastLog(entry *models.LogEntry) {
	h.send(Event{Event: EventLogUpdate, Data: entry})
}

func (h *Hub) send(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Broadcast: Не удалось сериализовать событие", err,
			zap.String("event", event.Event))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// ServeWS апгрейдит HTTP-запрос и регистрирует клиента.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Broadcast: Не удалось открыть соединение", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	// свежий срез новому клиенту вместе со всеми
	if h.resync != nil {
		h.resync(context.Background())
	}
}
