package service

import (
	"encoding/json"
	"log"
	"strings"

	"farmdirect-backend/internal/model"

	"github.com/nats-io/nats.go"
)

// NATSArchiver streams auction events onto NATS subjects so downstream
// consumers (analytics, notification fan-out) get the same feed as websocket
// clients. Channel "auction:<id>" maps to subject "auction.events.<id>".
type NATSArchiver struct {
	conn *nats.Conn
}

func NewNATSArchiver(natsURL string) (*NATSArchiver, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("farmdirect-auctions"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NATSArchiver{conn: conn}, nil
}

func (a *NATSArchiver) Publish(channel string, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	subject := "auction.events." + strings.TrimPrefix(channel, "auction:")
	if err := a.conn.Publish(subject, data); err != nil {
		log.Printf("NATS: publish %s failed: %v", subject, err)
	}
}

func (a *NATSArchiver) Close() {
	a.conn.Drain()
}
