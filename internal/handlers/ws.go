package handlers

import (
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSHandler upgrades authenticated clients onto the realtime hub and
// subscribes them to the rooms their actor type is entitled to.
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade authenticates the websocket handshake. Browsers cannot set an
// Authorization header on the upgrade request, so the token rides in a
// query parameter.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return utils.Unauthorized(c, "missing token")
	}
	_, claims, err := utils.ParseToken(token)
	if err != nil {
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	return c.Next()
}

// Serve is the websocket connection loop. The subscription set is fixed
// by the claims at upgrade time; clients do not pick their own rooms.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	claims, ok := conn.Locals("claims").(*models.Claims)
	if !ok {
		conn.Close()
		return
	}

	for _, room := range roomsFor(claims) {
		h.hub.Join(room, conn)
	}
	defer func() {
		h.hub.LeaveAll(conn)
		conn.Close()
	}()

	// inbound frames are ignored; the socket exists for server pushes
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func roomsFor(claims *models.Claims) []string {
	switch claims.ActorType {
	case models.ActorCustomer:
		return []string{realtime.CustomerRoom(claims.ActorID)}
	case models.ActorStaff:
		rooms := []string{realtime.StaffRoom(claims.ActorID)}
		if claims.BranchID != "" {
			rooms = append(rooms, realtime.BranchRoom(claims.BranchID))
		}
		if models.Role(claims.Role).IsTopLevel() {
			rooms = append(rooms, realtime.MerchantRoom(claims.MerchantID))
		}
		return rooms
	case models.ActorAdmin:
		return []string{realtime.AdminRoom}
	}
	return nil
}
