package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	notify "github.com/bitly/go-notify"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/vizserver/types"
)

type wsincomingmessage struct {
	messageType int
	p           []byte
	err         error
}

// Simplified version of the VizMessage struct; only the routing key is
// decoded here.
type SwarmIdVizMessage struct {
	SwarmID string `json:"swarmid"`
}

func Websocket(swarms *types.VizSwarmMap) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		swarm := swarms.Get(vars["id"])

		if swarm == nil {
			w.Write([]byte("SWARM NOT FOUND !"))
			return
		}

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("upgrade:", err)
			return
		}

		watcher := types.NewWatcher(c)
		swarm.SetWatcher(watcher)

		defer func(c *websocket.Conn) {
			swarm.RemoveWatcher(watcher.GetId())
			c.Close()
		}(c)

		clientclosedsocket := make(chan bool)
		c.SetCloseHandler(func(code int, text string) error {
			clientclosedsocket <- true
			return nil
		})

		// Listen to messages incoming from viz; mandatory to notice when websocket is closed client side
		incomingmsg := make(chan wsincomingmessage)
		go func(client *websocket.Conn, ch chan wsincomingmessage) {
			messageType, p, err := client.ReadMessage()
			ch <- wsincomingmessage{messageType, p, err}
		}(c, incomingmsg)

		// Listen to viz messages coming from the coverage server
		vizmsgchan := make(chan interface{})
		notify.Start("viz:message", vizmsgchan)

		for {
			select {
			case <-clientclosedsocket:
				{
					log.Println("<-clientclosedsocket")
					return
				}
			case vizmsg := <-vizmsgchan:
				{
					vizmsgString, ok := vizmsg.(string)
					utils.Assert(ok, "Failed to cast vizmessage into string")

					var vizMessage []SwarmIdVizMessage
					err := json.Unmarshal([]byte(vizmsgString), &vizMessage)
					utils.Check(err, "Failed to decode vizmessage")

					if len(vizMessage) == 0 {
						continue
					}

					if swarm.GetId() == vizMessage[0].SwarmID {
						c.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("{\"type\":\"framebatch\", \"data\": %s}", vizmsgString)))
					}
				}
			}
		}
	}
}
