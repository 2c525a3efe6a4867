// Package telegram posts short staff notifications about new reports and status changes
// to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"citizenpulse/backend/internal/catalog"
	"citizenpulse/backend/internal/localization"
	"citizenpulse/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ReportLookup loads the report an event refers to.
type ReportLookup interface {
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// Notifier turns change events into staff chat messages.
type Notifier struct {
	Bot       Sender
	Reports   ReportLookup
	Catalog   *catalog.Catalog
	Localizer *localization.Localizer
	ChatID    int64
	Language  string
}

// NewBotAPI authorizes the bot token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = false
	slog.Info("Telegram bot authorized", "account", bot.Self.UserName)
	return bot, nil
}

// Run handles events until ctx is cancelled or the source closes. Failures are logged
// and never stop the loop.
func (n *Notifier) Run(ctx context.Context, source <-chan models.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-source:
			if !ok {
				return
			}
			if err := n.Handle(ctx, ev); err != nil {
				slog.Warn("Staff notification failed", "kind", ev.Kind, "report_id", ev.ReportID, "error", err)
			}
		}
	}
}

// Handle sends a message for events staff care about and ignores the rest.
func (n *Notifier) Handle(ctx context.Context, ev models.ChangeEvent) error {
	if ev.Kind != models.ChangeReportCreated && ev.Kind != models.ChangeStatusChanged {
		return nil
	}

	r, err := n.Reports.GetReport(ctx, ev.ReportID)
	if err != nil {
		return err
	}

	text := n.render(ev.Kind, r)
	if _, err := n.Bot.Send(tgbotapi.NewMessage(n.ChatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (n *Notifier) render(kind models.ChangeKind, r *models.Report) string {
	switch kind {
	case models.ChangeReportCreated:
		key := "report_created"
		if r.IsAnonymous {
			key = "report_created_anonymous"
		}
		return n.Localizer.Format(n.Language, key,
			n.label(n.Catalog.TypeInfo, string(r.ReportType)),
			r.ReportNumber,
			r.Title,
			n.label(n.Catalog.CategoryInfo, r.Category),
		)
	default:
		return n.Localizer.Format(n.Language, "status_changed",
			r.ReportNumber,
			r.Title,
			n.label(n.Catalog.StatusInfo, string(r.Status)),
		)
	}
}

func (n *Notifier) label(lookup func(string) (catalog.Entry, bool), value string) string {
	if e, ok := lookup(value); ok {
		return e.Label
	}
	return value
}
