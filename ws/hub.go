// Package ws pushes cita status changes to connected dashboards so a
// medico or paciente sees estado updates without reloading.
package ws

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Event is the message broadcast when a cita changes.
type Event struct {
	Tipo       string `json:"tipo"` // cita_creada | cita_confirmada | cita_completada | cita_cancelada
	IDCita     int    `json:"id_cita"`
	IDMedico   int    `json:"id_medico"`
	IDPaciente int    `json:"id_paciente"`
	Estado     string `json:"estado"`
}

// Client is one WebSocket connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub owns every connected client and fans broadcast messages out to them.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run is the hub loop; callers start it once with `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					// slow client, drop it
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}

// Publish marshals the event and hands it to the broadcast loop. Safe to
// call with a nil hub (services under test run without one).
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}
	h.Broadcast <- payload
}
