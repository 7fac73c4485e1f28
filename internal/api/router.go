package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/mister-white/internal/config"
	"github.com/wfunc/mister-white/internal/middleware"
	"github.com/wfunc/mister-white/internal/repository"
	"github.com/wfunc/mister-white/internal/service"
	ws "github.com/wfunc/mister-white/internal/websocket"
)

// Router API路由器
type Router struct {
	engine      *gin.Engine
	db          *gorm.DB
	hub         *ws.Hub
	roomHandler *RoomHandler
	wsHandler   *WebSocketHandler
	log         *zap.Logger
}

// NewRouter 创建路由器并装配服务
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS())

	// 装配：仓储 -> 事件中心 -> 房间服务 -> 处理器
	repos := repository.NewManager(db)
	hub := ws.NewHub(log.Named("websocket"))
	rooms := service.NewRoomService(repos, hub, &cfg.Game, log.Named("service"))

	router := &Router{
		engine:      engine,
		db:          db,
		hub:         hub,
		roomHandler: NewRoomHandler(rooms, log.Named("api")),
		wsHandler:   NewWebSocketHandler(hub, &cfg.WebSocket, log.Named("websocket")),
		log:         log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 词条分类
		v1.GET("/categories", r.roomHandler.Categories)

		// 房间生命周期
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", r.roomHandler.CreateRoom)
			rooms.GET("", r.roomHandler.ListRooms)
			rooms.GET("/:code", r.roomHandler.GetRoom)
			rooms.DELETE("/:code", r.roomHandler.DeleteRoom)
			rooms.POST("/:code/join", r.roomHandler.JoinRoom)
			rooms.POST("/:code/leave", r.roomHandler.LeaveRoom)

			// 游戏操作
			rooms.GET("/:code/word", r.roomHandler.GetPlayerWord)
			rooms.POST("/:code/start", r.roomHandler.StartGame)
			rooms.POST("/:code/describe", r.roomHandler.SubmitDescription)
			rooms.POST("/:code/vote", r.roomHandler.SubmitVote)
			rooms.POST("/:code/next-round", r.roomHandler.NextRound)
		}
	}

	// WebSocket路由
	r.engine.GET("/ws", r.wsHandler.Serve)
	r.engine.GET("/ws/stats", r.wsHandler.Stats)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":       "healthy",
		"message":      "服务运行正常",
		"online_count": r.hub.GetOnlineCount(),
	})
}

// Hub 获取WebSocket事件中心（由调用方启动事件循环）
func (r *Router) Hub() *ws.Hub {
	return r.hub
}

// GetEngine 获取Gin引擎（用于测试和服务器装配）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
