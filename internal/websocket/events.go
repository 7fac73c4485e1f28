package websocket

// 系统消息类型
const (
	MessageTypeConnected    = "connected"
	MessageTypeDisconnected = "disconnected"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
)

// 房间频道事件，payload 由服务层组装
const (
	EventPlayerJoined         = "player_joined"
	EventPlayerLeft           = "player_left"
	EventHostChanged          = "host_changed"
	EventGameStarted          = "game_started"
	EventRoundStarted         = "round_started"
	EventPhaseChanged         = "phase_changed"
	EventDescriptionSubmitted = "description_submitted"
	EventVoteSubmitted        = "vote_submitted"
	EventPlayerEliminated     = "player_eliminated"
	EventGameEnded            = "game_ended"
	EventRoomDeleted          = "room_deleted"
)

// 全局频道事件
const (
	EventRoomCreated = "room_created"
)
