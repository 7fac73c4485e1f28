package game

import "fmt"

// Faction 胜利阵营
type Faction string

const (
	FactionCivilians   Faction = "civilians"
	FactionMisterWhite Faction = "mister_white"
	FactionUndercover  Faction = "undercover"
	FactionClown       Faction = "clown"
)

// 阵营展示名
var factionNames = map[Faction]string{
	FactionCivilians:   "平民阵营",
	FactionMisterWhite: "白板",
	FactionUndercover:  "卧底",
	FactionClown:       "小丑",
}

// Result 回合结算结果
type Result struct {
	Eliminated     string         `json:"eliminated"`      // 被投出玩家名，平票时为空
	EliminatedRole Role           `json:"eliminated_role"` // 被投出玩家的角色
	Winner         Faction        `json:"winner"`
	Reason         string         `json:"reason"` // 结果说明，相同输入下输出确定
	Votes          map[string]int `json:"votes"`  // 各玩家得票数
}

// ResolveVotes 统计投票并判定胜负。
// 得票严格最多者被淘汰，平票无人出局。
// 胜负按优先级判定：平票→平民胜；小丑被投出→小丑胜（覆盖一切）；
// 白板或卧底被投出→平民胜；平民被投出→按 白板>卧底>小丑 取场上
// 最高优先级的特殊角色获胜，无特殊角色时兜底平民胜。
func ResolveVotes(players []*PlayerState) *Result {
	// 投票发生时所有投票者都存活，这里按记录全量计票，
	// 淘汰已生效后重算也能得到同一结果
	votes := make(map[string]int)
	for _, p := range players {
		if p.VotedFor != "" {
			votes[p.VotedFor]++
		}
	}

	// 找出严格得票最多的玩家
	eliminated := ""
	maxVotes := 0
	tied := false
	for name, count := range votes {
		switch {
		case count > maxVotes:
			maxVotes = count
			eliminated = name
			tied = false
		case count == maxVotes:
			tied = true
		}
	}
	if tied || maxVotes == 0 {
		eliminated = ""
	}

	result := &Result{Votes: votes}

	// 平票：无人出局，平民默认获胜
	if eliminated == "" {
		result.Winner = FactionCivilians
		result.Reason = "平票，无人出局，平民阵营获胜"
		return result
	}

	var eliminatedRole Role
	for _, p := range players {
		if p.Name == eliminated {
			eliminatedRole = p.Role
			break
		}
	}

	result.Eliminated = eliminated
	result.EliminatedRole = eliminatedRole

	switch eliminatedRole {
	case RoleClown:
		// 小丑的目标就是被投出，覆盖其他一切结果
		result.Winner = FactionClown
		result.Reason = fmt.Sprintf("小丑 %s 被投出，小丑单独获胜", eliminated)
	case RoleMisterWhite:
		result.Winner = FactionCivilians
		result.Reason = fmt.Sprintf("白板 %s 被投出，平民阵营获胜", eliminated)
	case RoleUndercover:
		result.Winner = FactionCivilians
		result.Reason = fmt.Sprintf("卧底 %s 被投出，平民阵营获胜", eliminated)
	default:
		// 平民被投出，存活的最高优先级特殊角色获胜
		winner := survivingSpecialFaction(players, eliminated)
		result.Winner = winner
		result.Reason = fmt.Sprintf("平民 %s 被投出，%s获胜", eliminated, factionNames[winner])
	}

	return result
}

// survivingSpecialFaction 按 白板>卧底>小丑 的优先级取场上特殊角色，
// 没有特殊角色时兜底平民（正常配置下不可达，但不允许崩溃）。
func survivingSpecialFaction(players []*PlayerState, eliminated string) Faction {
	var hasWhite, hasUndercover, hasClown bool
	for _, p := range players {
		if p.Name == eliminated {
			continue
		}
		switch p.Role {
		case RoleMisterWhite:
			hasWhite = true
		case RoleUndercover:
			hasUndercover = true
		case RoleClown:
			hasClown = true
		}
	}

	switch {
	case hasWhite:
		return FactionMisterWhite
	case hasUndercover:
		return FactionUndercover
	case hasClown:
		return FactionClown
	default:
		return FactionCivilians
	}
}
