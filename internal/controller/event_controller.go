package controller

import (
	"errors"

	"studybuddy_backend/internal/service"
	"studybuddy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	AuthService  *service.AuthService
	EventService *service.EventService
}

func NewEventController(authService *service.AuthService, eventService *service.EventService) *EventController {
	return &EventController{
		AuthService:  authService,
		EventService: eventService,
	}
}

func (c *EventController) handleEventError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrEventNotFound):
		util.NotFound(ctx, "活动不存在")
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx, "课程不存在")
	case errors.Is(err, util.ErrNotEventAuthor):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateEvent 发布学习活动
func (c *EventController) CreateEvent(ctx *gin.Context) {
	author := c.AuthService.GetCurrentUser(ctx)
	if author == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.EventInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	event, err := c.EventService.CreateEvent(author, req)
	if err != nil {
		c.handleEventError(ctx, err)
		return
	}

	util.Created(ctx, event)
}

func (c *EventController) GetEvent(ctx *gin.Context) {
	event, err := c.EventService.GetEvent(ctx.Param("id"))
	if err != nil {
		c.handleEventError(ctx, err)
		return
	}
	util.Success(ctx, event)
}

// UpdateEvent 作者改自己的活动
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.EventInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	event, err := c.EventService.UpdateEvent(claims.UserID, ctx.Param("id"), req)
	if err != nil {
		c.handleEventError(ctx, err)
		return
	}

	util.Success(ctx, event)
}

func (c *EventController) DeleteEvent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.EventService.DeleteEvent(claims.UserID, ctx.Param("id")); err != nil {
		c.handleEventError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// ListEvents 活动发现：全部 / 按课程过滤
func (c *EventController) ListEvents(ctx *gin.Context) {
	if course := ctx.Query("course"); course != "" {
		events, err := c.EventService.ListCourseEvents(course)
		if err != nil {
			c.handleEventError(ctx, err)
			return
		}
		util.Success(ctx, events)
		return
	}

	events, err := c.EventService.ListEvents()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, events)
}

func (c *EventController) ListMyEvents(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	events, err := c.EventService.ListMyEvents(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, events)
}

// AddToCalendar 把活动加进个人日历，重复添加幂等
func (c *EventController) AddToCalendar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.EventService.AddToCalendar(claims.UserID, ctx.Param("id")); err != nil {
		c.handleEventError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"inCalendar": true})
}

func (c *EventController) CheckCalendar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	in, err := c.EventService.InCalendar(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"inCalendar": in})
}

func (c *EventController) RemoveFromCalendar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.EventService.RemoveFromCalendar(claims.UserID, ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"inCalendar": false})
}

func (c *EventController) ListCalendar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	events, err := c.EventService.ListCalendar(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, events)
}
