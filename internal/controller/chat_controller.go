package controller

import (
	"errors"
	"strconv"

	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
	Hub         *service.ChatHub
}

func NewChatController(chatService *service.ChatService, hub *service.ChatHub) *ChatController {
	return &ChatController{
		ChatService: chatService,
		Hub:         hub,
	}
}

// HandleWS WebSocket连接升级
func (c *ChatController) HandleWS(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}

type SendMessageRequest struct {
	Content string `json:"message" binding:"required"`
}

// SendMessage 往私聊房间或课程频道发一条消息
func (c *ChatController) SendMessage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	msg, opponentID, err := c.ChatService.SendMessage(claims.UserID, ctx.Param("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "频道不存在")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 私聊推给对端，课程频道全员广播（客户端按 channelId 过滤）
	push := service.WSMessage{Type: "CHAT_MESSAGE", Data: msg}
	if opponentID != 0 {
		c.Hub.PushToUsers([]uint{opponentID}, push)
	} else {
		c.Hub.PushToUsers(nil, push)
	}

	util.Created(ctx, msg)
}

// GetHistory 拉取频道历史消息，时间正序
func (c *ChatController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	messages, err := c.ChatService.LoadMessages(claims.UserID, ctx.Param("id"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, messages)
}

// GetOnlineStatus 查询某个用户是否在线
func (c *ChatController) GetOnlineStatus(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	util.Success(ctx, gin.H{"online": c.Hub.IsUserOnline(uint(id))})
}
