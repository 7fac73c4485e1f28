package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/mister-white/internal/service"
)

// RoomHandler 房间与游戏处理器
type RoomHandler struct {
	rooms service.RoomService
	log   *zap.Logger
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(rooms service.RoomService, log *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, log: log}
}

// JoinRoomRequest 加入房间请求
type JoinRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// PlayerActionRequest 只携带玩家标识的操作请求
type PlayerActionRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// DescribeRequest 提交描述请求
type DescribeRequest struct {
	PlayerID    string `json:"player_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// VoteRequest 提交投票请求
type VoteRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Target   string `json:"target" binding:"required"`
}

// ListRoomsResponse 大厅房间列表响应
type ListRoomsResponse struct {
	Rooms []*service.RoomSummary `json:"rooms"`
	Total int64                  `json:"total"`
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Tags Room
// @Accept json
// @Produce json
// @Param request body service.CreateRoomRequest true "建房参数"
// @Success 200 {object} service.CreateRoomResponse
// @Router /api/v1/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.rooms.CreateRoom(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// ListRooms 大厅房间列表
// @Summary 大厅房间列表
// @Tags Room
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} ListRoomsResponse
// @Router /api/v1/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rooms, total, err := h.rooms.ListRooms(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, &ListRoomsResponse{Rooms: rooms, Total: total})
}

// GetRoom 房间公开视图
// @Summary 房间状态
// @Tags Room
// @Produce json
// @Param code path string true "房间码"
// @Success 200 {object} service.RoomView
// @Router /api/v1/rooms/{code} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	view, err := h.rooms.GetRoom(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// JoinRoom 加入房间
// @Summary 加入房间
// @Tags Room
// @Accept json
// @Produce json
// @Param code path string true "房间码"
// @Param request body JoinRoomRequest true "玩家名称"
// @Success 200 {object} service.JoinRoomResponse
// @Router /api/v1/rooms/{code}/join [post]
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.rooms.JoinRoom(c.Request.Context(), c.Param("code"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// LeaveRoom 离开房间
// @Summary 离开房间
// @Tags Room
// @Accept json
// @Param code path string true "房间码"
// @Param request body PlayerActionRequest true "玩家标识"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms/{code}/leave [post]
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	var req PlayerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.rooms.LeaveRoom(c.Request.Context(), c.Param("code"), req.PlayerID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// DeleteRoom 房主解散房间
// @Summary 解散房间
// @Tags Room
// @Param code path string true "房间码"
// @Param player_id query string true "房主标识"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms/{code} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.rooms.DeleteRoom(c.Request.Context(), c.Param("code"), c.Query("player_id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// GetPlayerWord 玩家私有词面
// @Summary 查询本人的词
// @Tags Game
// @Produce json
// @Param code path string true "房间码"
// @Param player_id query string true "玩家标识"
// @Success 200 {object} service.PlayerPrivateView
// @Router /api/v1/rooms/{code}/word [get]
func (h *RoomHandler) GetPlayerWord(c *gin.Context) {
	view, err := h.rooms.GetPlayerWord(c.Request.Context(), c.Param("code"), c.Query("player_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// Categories 可用词条分类
// @Summary 词条分类列表
// @Tags Game
// @Produce json
// @Param difficulty query string false "难度"
// @Success 200 {object} map[string][]string
// @Router /api/v1/categories [get]
func (h *RoomHandler) Categories(c *gin.Context) {
	categories, err := h.rooms.Categories(c.Request.Context(), c.Query("difficulty"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"categories": categories})
}

// StartGame 房主开始游戏
// @Summary 开始游戏
// @Tags Game
// @Accept json
// @Produce json
// @Param code path string true "房间码"
// @Param request body PlayerActionRequest true "房主标识"
// @Success 200 {object} service.RoomView
// @Router /api/v1/rooms/{code}/start [post]
func (h *RoomHandler) StartGame(c *gin.Context) {
	var req PlayerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	view, err := h.rooms.StartGame(c.Request.Context(), c.Param("code"), req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// SubmitDescription 提交描述
// @Summary 提交描述
// @Tags Game
// @Accept json
// @Produce json
// @Param code path string true "房间码"
// @Param request body DescribeRequest true "描述内容"
// @Success 200 {object} service.RoomView
// @Router /api/v1/rooms/{code}/describe [post]
func (h *RoomHandler) SubmitDescription(c *gin.Context) {
	var req DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	view, err := h.rooms.SubmitDescription(c.Request.Context(), c.Param("code"), req.PlayerID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// SubmitVote 提交投票
// @Summary 提交投票
// @Tags Game
// @Accept json
// @Produce json
// @Param code path string true "房间码"
// @Param request body VoteRequest true "投票目标"
// @Success 200 {object} service.RoomView
// @Router /api/v1/rooms/{code}/vote [post]
func (h *RoomHandler) SubmitVote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	view, err := h.rooms.SubmitVote(c.Request.Context(), c.Param("code"), req.PlayerID, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}

// NextRound 房主开启下一回合
// @Summary 开启下一回合
// @Tags Game
// @Accept json
// @Produce json
// @Param code path string true "房间码"
// @Param request body PlayerActionRequest true "房主标识"
// @Success 200 {object} service.RoomView
// @Router /api/v1/rooms/{code}/next-round [post]
func (h *RoomHandler) NextRound(c *gin.Context) {
	var req PlayerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	view, err := h.rooms.NextRound(c.Request.Context(), c.Param("code"), req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, view)
}
