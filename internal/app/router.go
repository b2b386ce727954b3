package app

import (
	"studybuddy_backend/internal/config"
	"studybuddy_backend/internal/middleware"
	"studybuddy_backend/internal/model"
	"studybuddy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerFriendRoutes(authGroup, c)
		a.registerChatRoutes(authGroup, c)
		a.registerEventRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录对游客可见，注册页要用
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/academic-units", c.course.ListAcademicUnits)
		public.GET("/courses/departments", c.course.ListDepartments)
		public.GET("/courses/:code", c.course.GetCourse)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.POST("/logout", c.auth.Logout)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.PUT("/user/name", c.user.UpdateName)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)
	rg.GET("/user/courses", c.user.GetEnrolledCourses)
	rg.PUT("/user/courses", c.user.SetEnrolledCourses)
	rg.DELETE("/user", c.user.DeleteAccount)
	rg.GET("/users/:id", c.user.GetUser)
	rg.GET("/users/:id/online", c.chat.GetOnlineStatus)
}

func (a *App) registerFriendRoutes(rg *gin.RouterGroup, c *controllers) {
	friends := rg.Group("/friends")
	{
		friends.GET("", c.friendship.GetFriendList)
		friends.POST("/refresh", c.friendship.RefreshFriendList)
		friends.POST("/requests", c.friendship.SendFriendRequest)
		friends.PUT("/requests/:id/accept", c.friendship.AcceptFriendRequest)
		friends.DELETE("/requests/:id", c.friendship.CancelFriendRequest)
		friends.POST("/:id/block", c.friendship.BlockFriend)
		friends.POST("/:id/unblock", c.friendship.UnblockFriend)
	}
}

func (a *App) registerChatRoutes(rg *gin.RouterGroup, c *controllers) {
	chat := rg.Group("/chat")
	{
		chat.GET("/ws", c.chat.HandleWS)
		chat.POST("/channels/:id/messages", c.chat.SendMessage)
		chat.GET("/channels/:id/messages", c.chat.GetHistory)
	}
}

func (a *App) registerEventRoutes(rg *gin.RouterGroup, c *controllers) {
	events := rg.Group("/events")
	{
		events.GET("", c.event.ListEvents)
		events.POST("", c.event.CreateEvent)
		events.GET("/mine", c.event.ListMyEvents)
		events.GET("/calendar", c.event.ListCalendar)
		events.GET("/:id", c.event.GetEvent)
		events.PUT("/:id", c.event.UpdateEvent)
		events.DELETE("/:id", c.event.DeleteEvent)
		events.POST("/:id/calendar", c.event.AddToCalendar)
		events.GET("/:id/calendar", c.event.CheckCalendar)
		events.DELETE("/:id/calendar", c.event.RemoveFromCalendar)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/courses", c.course.UpsertCourse)
		admin.DELETE("/courses/:code", c.course.DeleteCourse)
	}
}
