package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raonlive/DRAFT-SERVICES/poll/service"
	"github.com/raonlive/DRAFT-SERVICES/shared/league"
	"github.com/raonlive/DRAFT-SERVICES/shared/models"
)

const votePrefix = "vote"

// Voter resolves a matchup vote.
type Voter interface {
	Vote(ctx context.Context, matchupID, choice string) (*service.VoteResult, error)
}

// TelegramAnnouncer posts new matchups to a chat with one button per team
// and turns button presses into votes.
type TelegramAnnouncer struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	voter   Voter
	timeout time.Duration
}

func NewTelegramAnnouncer(token string, chatID int64, voter Voter, timeout time.Duration) (*TelegramAnnouncer, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramAnnouncer{
		bot:     bot,
		chatID:  chatID,
		voter:   voter,
		timeout: timeout,
	}, nil
}

// Announce implements service.Announcer.
func (t *TelegramAnnouncer) Announce(ctx context.Context, m models.Matchup) error {
	msg := tgbotapi.NewMessage(t.chatID, formatMatchup(m))
	msg.ReplyMarkup = voteKeyboard(m)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to post matchup %s: %w", m.ID, err)
	}
	return nil
}

// Run handles button callbacks until ctx is cancelled.
func (t *TelegramAnnouncer) Run(ctx context.Context) {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			if update.CallbackQuery == nil {
				continue
			}
			t.handleCallback(ctx, update.CallbackQuery)
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		}
	}
}

func (t *TelegramAnnouncer) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	matchupID, choice, ok := parseVoteData(query.Data)
	if !ok {
		t.answer(query, "")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.voter.Vote(ctx, matchupID, choice)
	if err != nil {
		slog.Warn("Vote from Telegram rejected", "matchup", matchupID, "error", err)
		t.answer(query, voteErrorText(err))
		return
	}
	t.answer(query, "투표 완료")

	if query.Message != nil {
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, formatResult(query.Message.Text, result))
		if _, err := t.bot.Send(edit); err != nil {
			slog.Error("Error editing matchup message", "error", err)
		}
	}
}

func (t *TelegramAnnouncer) answer(query *tgbotapi.CallbackQuery, text string) {
	if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, text)); err != nil {
		slog.Error("Error answering callback", "error", err)
	}
}

func voteKeyboard(m models.Matchup) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(m.TeamA.TeamName, voteData(m.ID, service.ChoiceA)),
			tgbotapi.NewInlineKeyboardButtonData(m.TeamB.TeamName, voteData(m.ID, service.ChoiceB)),
		),
	)
}

func voteData(matchupID, choice string) string {
	return votePrefix + ":" + matchupID + ":" + choice
}

func parseVoteData(data string) (matchupID, choice string, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != votePrefix || parts[1] == "" {
		return "", "", false
	}
	if parts[2] != service.ChoiceA && parts[2] != service.ChoiceB {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func formatMatchup(m models.Matchup) string {
	var b strings.Builder
	b.WriteString("🏀 오늘의 매치업\n\n")
	writeRoster(&b, "A", m.TeamA)
	b.WriteString("\nvs\n\n")
	writeRoster(&b, "B", m.TeamB)
	b.WriteString("\n더 강한 팀에 투표하세요!")
	return b.String()
}

func writeRoster(b *strings.Builder, label string, t models.Team) {
	fmt.Fprintf(b, "%s. %s (%d)\n", label, t.TeamName, t.Total)
	names := make([]string, len(t.Players))
	for i, p := range t.Players {
		names[i] = fmt.Sprintf("%s %d", p.Name, p.Coin)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n")
}

func formatResult(original string, r *service.VoteResult) string {
	return fmt.Sprintf("%s\n\n✅ %s 승리 (%d승 %d패)", original, r.Winner.TeamName, r.Winner.Wins, r.Winner.Losses)
}

func voteErrorText(err error) string {
	switch {
	case errors.Is(err, league.ErrNoOpenMatchup), errors.Is(err, league.ErrMatchupMismatch), errors.Is(err, service.ErrAlreadyVoted):
		return "이미 종료된 매치업입니다"
	case errors.Is(err, service.ErrDraftService):
		return "잠시 후 다시 시도해 주세요"
	}
	return "투표에 실패했습니다"
}
