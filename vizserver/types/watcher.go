package types

import (
	uuid "github.com/satori/go.uuid"

	"github.com/gorilla/websocket"
)

type Watcher struct {
	id   string
	conn *websocket.Conn
}

func NewWatcher(conn *websocket.Conn) *Watcher {
	return &Watcher{
		id:   uuid.NewV4().String(), // random uuid
		conn: conn,
	}
}

func (watcher *Watcher) GetId() string {
	return watcher.id
}
