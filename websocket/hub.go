// websocket/hub.go
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Константы для WebSocket-соединения
const (
	// Время ожидания записи сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания pong-сообщения от клиента
	pongWait = 60 * time.Second

	// Период отправки пинг-сообщений
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Дашборд открыт для любых источников, как и остальной API
		return true
	},
}

// RefreshEvent представляет уведомление клиентам дашборда о том,
// что таблица фактов была перезагружена оффлайн-запуском ETL
type RefreshEvent struct {
	Event       string `json:"event"`
	LastUpdated string `json:"lastUpdated"`
}

// Hub управляет подключенными клиентами дашборда и рассылает
// им уведомления об обновлении данных
type Hub struct {
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	Clients    map[*Client]bool
}

// NewHub создает новый экземпляр Hub
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
	}
}

// Run запускает работу хаба
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			log.Printf("👤 Клиент дашборда подключился (всего: %d)", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				log.Printf("👤 Клиент дашборда отключился (всего: %d)", len(h.Clients))
			}

		case message := <-h.Broadcast:
			// Рассылаем уведомление всем подключенным клиентам
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}

// NotifyRefresh рассылает уведомление о новой отметке last_updated
func (h *Hub) NotifyRefresh(lastUpdated string) {
	payload, err := json.Marshal(RefreshEvent{
		Event:       "refresh",
		LastUpdated: lastUpdated,
	})
	if err != nil {
		log.Printf("❌ Ошибка при кодировании уведомления: %v", err)
		return
	}

	h.Broadcast <- payload
}

// HandleConnections обрабатывает входящие WebSocket-подключения
func (h *Hub) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Ошибка при установке WebSocket-соединения: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		Socket: conn,
		Send:   make(chan []byte, 8),
	}

	h.Register <- client

	go client.writePump()
	go client.readPump()
}
