// Package players хранит игроков и их сохранения.
// models.go описывает запись игрока в таблице players.
package players

import "time"

// Player — метаданные игрока. Само игровое состояние лежит в снимке.
type Player struct {
	UserID           int64     `json:"userId"`
	Username         string    `json:"username"`
	FirstName        string    `json:"firstName"`
	ChatID           int64     `json:"chatId"`           // куда слать напоминания
	LastLoginDate    string    `json:"lastLoginDate"`    // копия Stats.LastLoginDate для выборок
	RemindersEnabled bool      `json:"remindersEnabled"` // игрок может отключить вечерние напоминания
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DisplayName возвращает @username, а если его нет, то имя.
func (p *Player) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return "игрок"
}

// Record — игрок вместе с сохранением. Snapshot == nil у нового игрока.
type Record struct {
	Player
	Snapshot []byte
}

// Identity — кто выполняет действие. Приходит из Telegram-апдейта.
type Identity struct {
	UserID    int64
	Username  string
	FirstName string
	ChatID    int64
}

// apply обновляет имя и чат, если они пришли в апдейте.
func (id Identity) apply(p *Player) {
	p.UserID = id.UserID
	if id.Username != "" {
		p.Username = id.Username
	}
	if id.FirstName != "" {
		p.FirstName = id.FirstName
	}
	if id.ChatID != 0 {
		p.ChatID = id.ChatID
	}
}
