package controller

import (
	"errors"

	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendshipController struct {
	AuthService       *service.AuthService
	FriendshipService *service.FriendshipService
	FriendLists       *service.FriendListService
}

func NewFriendshipController(authService *service.AuthService, friendshipService *service.FriendshipService, friendLists *service.FriendListService) *FriendshipController {
	return &FriendshipController{
		AuthService:       authService,
		FriendshipService: friendshipService,
		FriendLists:       friendLists,
	}
}

// 邮箱原样传给目录查询，不做格式校验：查不到统一走 "Email not found" toast。
type FriendRequestBody struct {
	Email string `json:"userEmail" binding:"required"`
}

// SendFriendRequest 按邮箱发起好友申请。查无此人、重复申请这类结果
// 通过 toast 推送告知，HTTP 层面都算受理成功。
func (c *FriendshipController) SendFriendRequest(ctx *gin.Context) {
	requester := c.AuthService.GetCurrentUser(ctx)
	if requester == nil {
		util.Unauthorized(ctx)
		return
	}

	var req FriendRequestBody
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.FriendshipService.SendFriendRequest(requester, req.Email); err != nil {
		if errors.Is(err, util.ErrSelfFriendRequest) {
			util.BadRequest(ctx, "不能添加自己为好友")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"accepted": true})
}

func (c *FriendshipController) handleRegisterError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrRegisterNotFound):
		util.NotFound(ctx, "好友关系不存在")
	case errors.Is(err, util.ErrNotRegisterParty):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrRequestNotPending):
		util.Error(ctx, 409, "该申请已被处理")
	case errors.Is(err, util.ErrNotBlocked):
		util.Error(ctx, 409, "该好友未被拉黑")
	default:
		util.LogInternalError(ctx, err)
	}
}

// AcceptFriendRequest 接受待处理的好友申请
func (c *FriendshipController) AcceptFriendRequest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.FriendshipService.AcceptPendingRequest(ctx.Param("id"), claims.UserID); err != nil {
		c.handleRegisterError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"status": "ACCEPTED"})
}

// CancelFriendRequest 撤回/拒绝待处理申请，登记记录直接删除
func (c *FriendshipController) CancelFriendRequest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.FriendshipService.CancelPendingRequest(ctx.Param("id"), claims.UserID); err != nil {
		c.handleRegisterError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"canceled": true})
}

// BlockFriend 拉黑某个已接受的好友
func (c *FriendshipController) BlockFriend(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.FriendshipService.BlockFriend(ctx.Param("id"), claims.UserID); err != nil {
		c.handleRegisterError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"status": "BLOCKED"})
}

// UnblockFriend 解除拉黑。只有当初拉黑的一方能解除，
// 被拉黑方调用不报错，只是 opened=false。
func (c *FriendshipController) UnblockFriend(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	opened, err := c.FriendshipService.OpenBlockedFriend(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleRegisterError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"opened": opened})
}

// GetFriendList 返回当前好友列表快照
func (c *FriendshipController) GetFriendList(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state := c.FriendLists.State(claims.UserID)
	util.Success(ctx, state.Snapshot())
}

// RefreshFriendList 触发一次重新拉取，刷新结果走 WebSocket 快照推送
func (c *FriendshipController) RefreshFriendList(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state := c.FriendLists.State(claims.UserID)
	go state.Refresh()
	util.Success(ctx, gin.H{"refreshing": true})
}
