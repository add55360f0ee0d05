package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/services"
	"github.com/yeremiapane/dinein-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// roleRooms memetakan role staff ke room fan-out miliknya.
var roleRooms = map[string]string{
	"waiter": realtime.RoomWaiter,
	"chef":   realtime.RoomKitchen,
	"admin":  realtime.RoomAdmin,
}

type WSController struct {
	Hub      *realtime.Hub
	Sessions *services.SessionService
}

func NewWSController(hub *realtime.Hub, sessions *services.SessionService) *WSController {
	return &WSController{Hub: hub, Sessions: sessions}
}

// StaffSocket -> websocket staff; join room sesuai role dari token.
// Keanggotaan room tidak bertahan melewati koneksi: reconnect = join ulang.
func (wc *WSController) StaffSocket(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	room, ok := roleRooms[roleInterface.(string)]
	if !ok {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.Join(ws, room)
	utils.InfoLogger.Printf("Staff subscriber joined room %s", room)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Disconnect(ws)
}

// GuestSocket -> websocket tamu, hanya menerima event sesinya sendiri.
func (wc *WSController) GuestSocket(c *gin.Context) {
	sessionID, err := paramUint(c, "session_id")
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	session, err := wc.Sessions.GetSession(sessionID)
	if err != nil || session.Status != services.SessionStatusOpen {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	room := realtime.SessionRoom(session.ID)
	wc.Hub.Join(ws, room)
	utils.InfoLogger.Printf("Guest subscriber joined room %s", room)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Disconnect(ws)
}
