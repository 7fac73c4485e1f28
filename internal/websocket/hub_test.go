package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Hub:  hub,
		Send: make(chan []byte, 16),
	}
}

// drain 读空客户端收到的消息
func drain(c *Client) []*Message {
	var messages []*Message
	for {
		select {
		case data := <-c.Send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err == nil {
				messages = append(messages, &msg)
			}
		default:
			return messages
		}
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub)

	hub.registerClient(client)
	assert.Equal(t, 1, hub.GetOnlineCount())

	// 注册后收到连接确认
	messages := drain(client)
	require.Len(t, messages, 1)
	assert.Equal(t, MessageTypeConnected, messages[0].Type)

	hub.unregisterClient(client)
	assert.Equal(t, 0, hub.GetOnlineCount())
}

func TestHubRoomChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	inRoom := newTestClient(hub)
	outside := newTestClient(hub)
	hub.registerClient(inRoom)
	hub.registerClient(outside)
	drain(inRoom)
	drain(outside)

	hub.joinRoomChannel(inRoom, "ROOM01")
	assert.Equal(t, 1, hub.GetRoomSubscriberCount("ROOM01"))

	// 房间事件只发给订阅者
	payload, _ := json.Marshal(map[string]string{"player": "Ana"})
	hub.broadcastMessage(&Message{
		Type:     EventPlayerJoined,
		RoomCode: "ROOM01",
		Data:     payload,
	})

	got := drain(inRoom)
	require.Len(t, got, 1)
	assert.Equal(t, EventPlayerJoined, got[0].Type)
	assert.Empty(t, drain(outside))
}

func TestHubGlobalBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := newTestClient(hub)
	second := newTestClient(hub)
	hub.registerClient(first)
	hub.registerClient(second)
	drain(first)
	drain(second)

	// 不带房间码的消息发给所有连接
	hub.broadcastMessage(&Message{Type: EventRoomCreated})

	require.Len(t, drain(first), 1)
	require.Len(t, drain(second), 1)
}

func TestHubSwitchRoomChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub)
	hub.registerClient(client)
	drain(client)

	hub.joinRoomChannel(client, "ROOM01")
	hub.joinRoomChannel(client, "ROOM02")

	// 切换频道后旧频道自动退订
	assert.Equal(t, 0, hub.GetRoomSubscriberCount("ROOM01"))
	assert.Equal(t, 1, hub.GetRoomSubscriberCount("ROOM02"))
	assert.Equal(t, "ROOM02", client.RoomCode)
}

func TestHubUnregisterLeavesRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient(hub)
	hub.registerClient(client)
	hub.joinRoomChannel(client, "ROOM01")

	hub.unregisterClient(client)
	assert.Equal(t, 0, hub.GetRoomSubscriberCount("ROOM01"))
}

func TestHubSendToClientNotFound(t *testing.T) {
	hub := NewHub(zap.NewNop())

	err := hub.SendToClient("missing", &Message{Type: MessageTypePing})
	assert.Equal(t, ErrClientNotFound, err)
}

// 注销和定向发送并发执行时不能撞上已关闭的 Send 通道
func TestHubSendToClientDuringUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	for i := 0; i < 100; i++ {
		client := newTestClient(hub)
		hub.registerClient(client)

		done := make(chan struct{})
		go func() {
			hub.unregisterClient(client)
			close(done)
		}()

		// 通道已关闭时必须返回未找到，而不是 panic
		err := hub.SendToClient(client.ID, &Message{Type: MessageTypePing})
		if err != nil {
			assert.Equal(t, ErrClientNotFound, err)
		}
		<-done
	}
}
