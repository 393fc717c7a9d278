package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type createRoomResponse struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (that *Server) handlePing(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (that *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: apperror.CodeBadRequest})
		return
	}

	name, err := pkg.NormalizePlayerName(req.PlayerName)
	if err != nil {
		that.writeError(c, err)
		return
	}

	created, err := that.rooms.CreateRoom(c.Request.Context(), name)
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createRoomResponse{RoomID: created.RoomID, PlayerID: created.PlayerID})
}

func (that *Server) handleGetRoom(c *gin.Context) {
	room, err := that.rooms.GetRoom(c.Request.Context(), strings.ToUpper(c.Param("id")))
	if err != nil {
		that.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

func (that *Server) writeError(c *gin.Context, err error) {
	code := apperror.Code(err)

	status := http.StatusConflict
	switch code {
	case apperror.CodeBadRequest:
		status = http.StatusBadRequest
	case apperror.CodeRoomNotFound:
		status = http.StatusNotFound
	case apperror.CodeInternal:
		status = http.StatusInternalServerError
		that.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, errorResponse{Error: apperror.Message(err), Code: code})
}
