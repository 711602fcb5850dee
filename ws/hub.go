package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/otterfood/storefront-app/models"
)

// Event types pushed to storefront clients
const (
	EventOrderUpdate    = "order_update"
	EventPaymentPending = "payment_pending"
	EventPaymentUpdate  = "payment_update"
	EventPaymentSuccess = "payment_success"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected storefront client and pushes order/payment
// events so the PWA can refresh without polling. Clients are keyed by
// session so payment events only reach the session that owns the order.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> session key
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection for the given storefront session.
func RegisterClient(conn *websocket.Conn, sessionKey string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = sessionKey
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes an order's new state to its session.
func BroadcastOrderUpdate(order models.Order) {
	sendToSession(order.SessionKey, Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastPaymentPending notifies the session its QRIS code is ready.
func BroadcastPaymentPending(order models.Order, payment models.Payment) {
	sendToSession(order.SessionKey, Message{
		Event: EventPaymentPending,
		Data: map[string]interface{}{
			"payment": payment,
			"order":   order,
		},
	})
}

// BroadcastPaymentUpdate pushes a payment status change to the session.
func BroadcastPaymentUpdate(order models.Order, payment models.Payment) {
	event := EventPaymentUpdate
	if payment.Status == "success" {
		event = EventPaymentSuccess
	}
	sendToSession(order.SessionKey, Message{
		Event: event,
		Data: map[string]interface{}{
			"payment": payment,
			"order":   order,
		},
	})
}

func sendToSession(sessionKey string, msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		logrus.Errorf("ws: marshal message: %v", err)
		return
	}

	for conn, session := range hub.clients {
		if session != sessionKey {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logrus.Warnf("ws: send to session %s: %v", session, err)
		}
	}
}
