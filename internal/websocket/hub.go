package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心。
// 每个房间码对应一个频道，客户端订阅频道后才能收到房间事件；
// 未订阅任何房间的客户端只收全局事件。
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 房间码到客户端的映射
	roomClients map[string][]*Client
	roomMu      sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 日志
	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`                // 消息类型
	RoomCode  string          `json:"room_code,omitempty"` // 房间频道，为空表示全局
	Data      json.RawMessage `json:"data,omitempty"`      // 消息数据
	Timestamp int64           `json:"timestamp"`           // 时间戳
}

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		roomClients: make(map[string][]*Client),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	// 启动心跳检测
	go h.runHeartbeat()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.leaveRoomChannel(client)

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("room_code", client.RoomCode))
}

// joinRoomChannel 订阅房间频道。
// 每个客户端同时只订阅一个房间，切换时先退出旧频道
func (h *Hub) joinRoomChannel(client *Client, roomCode string) {
	h.leaveRoomChannel(client)

	h.roomMu.Lock()
	client.RoomCode = roomCode
	h.roomClients[roomCode] = append(h.roomClients[roomCode], client)
	h.roomMu.Unlock()

	h.logger.Debug("客户端订阅房间频道",
		zap.String("client_id", client.ID),
		zap.String("room_code", roomCode))
}

// leaveRoomChannel 退出当前房间频道
func (h *Hub) leaveRoomChannel(client *Client) {
	if client.RoomCode == "" {
		return
	}

	h.roomMu.Lock()
	clients := h.roomClients[client.RoomCode]
	for i, c := range clients {
		if c.ID == client.ID {
			h.roomClients[client.RoomCode] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.roomClients[client.RoomCode]) == 0 {
		delete(h.roomClients, client.RoomCode)
	}
	h.roomMu.Unlock()

	client.RoomCode = ""
}

// broadcastMessage 广播消息。
// 带房间码的消息只发给该频道的订阅者
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	if message.RoomCode != "" {
		h.roomMu.RLock()
		clients := h.roomClients[message.RoomCode]
		h.roomMu.RUnlock()

		for _, client := range clients {
			h.sendRaw(client, data)
		}
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		h.sendRaw(client, data)
	}
	h.clientsMu.RUnlock()
}

// sendRaw 非阻塞投递，缓冲区满时丢弃并记日志
func (h *Hub) sendRaw(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("客户端发送缓冲区满",
			zap.String("client_id", client.ID))
	}
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	// 持锁投递：注销在写锁下关闭 Send 通道，
	// 解锁后再发会撞上已关闭的通道
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// PublishToRoom 向房间频道发布事件
func (h *Hub) PublishToRoom(roomCode, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.broadcast <- &Message{
		Type:      event,
		RoomCode:  roomCode,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	return nil
}

// PublishGlobal 向所有连接发布事件
func (h *Hub) PublishGlobal(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.broadcast <- &Message{
		Type:      event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	return nil
}

// GetRoomSubscriberCount 获取房间频道订阅人数
func (h *Hub) GetRoomSubscriberCount(roomCode string) int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.roomClients[roomCode])
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// runHeartbeat 运行心跳检测
func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		ping := &Message{
			Type:      MessageTypePing,
			Timestamp: time.Now().Unix(),
		}
		h.broadcast <- ping
	}
}

// Subscribe 让客户端订阅房间频道（连接时携带房间码用）
func (h *Hub) Subscribe(client *Client, roomCode string) {
	h.joinRoomChannel(client, roomCode)
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
