package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"trailbot/trader"
)

// Telegram 通过 Telegram bot 推送交易事件
// 通知失败只记日志，绝不影响交易流程
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram 创建通知器，token 为空时返回 nil（通知关闭）
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot 初始化失败: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyEntry 推送入场消息
func (t *Telegram) NotifyEntry(p trader.Position) {
	if t == nil {
		return
	}
	t.send(fmt.Sprintf("📈 %s 入场\n价格: %s\n数量: %s\n时间: %s",
		p.Pair,
		p.EntryPrice.String(),
		p.EntryAmount.String(),
		time.Unix(p.EntryTime, 0).UTC().Format(time.RFC3339)))
}

// NotifyExit 推送平仓消息
func (t *Telegram) NotifyExit(tr trader.Trade) {
	if t == nil {
		return
	}
	t.send(fmt.Sprintf("📉 %s 平仓\n入场: %s\n离场: %s\n盈亏: %s",
		tr.Pair,
		tr.EntryPrice.String(),
		tr.ExitPrice.String(),
		tr.Profit.String()))
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Warn().Err(err).Msg("telegram 通知发送失败")
	}
}
