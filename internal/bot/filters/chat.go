// Package filters решает, в каких чатах бот вообще отвечает.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает личку всегда, группы по списку (пустой список — все группы).
// Каналы и служебные сообщения без автора отбрасываются.
type ChatFilter struct {
	allowedChats map[int64]bool
}

func NewChatFilter(allowedChatIDs []int64) *ChatFilter {
	allowed := make(map[int64]bool, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = true
	}
	return &ChatFilter{allowedChats: allowed}
}

func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	// 1) Личка
	if message.Chat.IsPrivate() {
		return true
	}

	// 2) Группы
	if message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
		if len(f.allowedChats) == 0 || f.allowedChats[message.Chat.ID] {
			return true
		}
		logger.Debug("deny: group not in ALLOWED_CHAT_IDS")
		return false
	}

	// 3) Каналы и прочее игнорируем
	logger.Info("deny: unsupported chat type")
	return false
}
