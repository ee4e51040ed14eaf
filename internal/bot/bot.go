// Package bot is the Telegram front-end. It maps commands onto the core
// services and formats replies; it holds no business rules of its own.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus" // Logging library

	"topup_relay/internal/analytics"
	"topup_relay/internal/auth"
	"topup_relay/internal/domain"
	"topup_relay/internal/ledger"
	"topup_relay/internal/registry"
	"topup_relay/internal/relay"
)

const helpText = `/start - Register and show the welcome message
/balance - Show your wallet balance
/deposit [amount] [currency] - Get deposit instructions (default 10 TON)
/transactions - Show your last transactions
/stats - Bot statistics (administrators only)
/confirm <id> - Mark a pending transaction completed (administrators only)
/fail <id> - Mark a pending transaction failed (administrators only)
/help - Show this message`

// Bot wires the Telegram API to the relay core
type Bot struct {
	api        *tgbotapi.BotAPI
	registry   *registry.Registry
	ledger     *ledger.Manager
	relay      *relay.Service
	analytics  *analytics.Aggregator
	authorizer *auth.Authorizer
}

// New creates the bot front-end
func New(api *tgbotapi.BotAPI, reg *registry.Registry, led *ledger.Manager, svc *relay.Service, agg *analytics.Aggregator, authorizer *auth.Authorizer) *Bot {
	return &Bot{api: api, registry: reg, ledger: led, relay: svc, analytics: agg, authorizer: authorizer}
}

// Run long-polls Telegram until ctx is cancelled
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	logrus.Info("Bot polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			if update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message)
			} else {
				b.reply(update.Message.Chat.ID, "Use /help for the list of commands.")
			}
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	if from == nil {
		return
	}
	var text string
	switch msg.Command() {
	case "start":
		text = b.cmdStart(ctx, from)
	case "balance":
		text = b.cmdBalance(ctx, from.ID)
	case "deposit":
		text = b.cmdDeposit(ctx, from, msg.CommandArguments())
	case "transactions":
		text = b.cmdTransactions(ctx, from.ID)
	case "stats":
		text = b.cmdStats(ctx, from.ID)
	case "confirm":
		text = b.cmdTransition(ctx, from.ID, msg.CommandArguments(), domain.StatusCompleted)
	case "fail":
		text = b.cmdTransition(ctx, from.ID, msg.CommandArguments(), domain.StatusFailed)
	case "help":
		text = helpText
	default:
		text = "Unknown command. Use /help."
	}
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(out); err != nil {
		logrus.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err.Error(),
		}).Error("Failed to send message")
	}
}

func profileOf(from *tgbotapi.User) domain.Profile {
	return domain.Profile{
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
}

func (b *Bot) cmdStart(ctx context.Context, from *tgbotapi.User) string {
	if _, err := b.registry.EnsureAccount(ctx, from.ID, profileOf(from)); err != nil {
		return "Registration failed, please try again."
	}
	return fmt.Sprintf("Hi, %s!\nI top up Steam wallets through the payment gateway.\nUse /balance, /deposit, /transactions or /help to get started.", from.FirstName)
}

func (b *Bot) cmdBalance(ctx context.Context, telegramID int64) string {
	account, err := b.registry.Lookup(ctx, telegramID)
	if err != nil {
		return "You are not registered yet. Please use /start."
	}
	return fmt.Sprintf("Your current wallet balance: %s RUB", account.Balance.StringFixed(2))
}

func (b *Bot) cmdDeposit(ctx context.Context, from *tgbotapi.User, args string) string {
	// Default deposit terms; the gateway confirms the final ones
	amount := decimal.NewFromInt(10)
	currency := "TON"
	fields := strings.Fields(args)
	if len(fields) > 0 {
		parsed, err := decimal.NewFromString(fields[0])
		if err != nil {
			return "Usage: /deposit [amount] [currency]"
		}
		amount = parsed
	}
	if len(fields) > 1 {
		currency = strings.ToUpper(fields[1])
	}
	result, err := b.relay.InitiateDeposit(ctx, from.ID, profileOf(from), amount, currency)
	if err != nil {
		return "Could not create a deposit right now. Please try again later."
	}
	intent := result.Intent
	return fmt.Sprintf("To top up, send %s %s to this address:\n%s\n\n%s\n\nThe transaction is recorded as #%d and will complete once the payment is confirmed.",
		intent.Amount.String(), intent.Currency, intent.Address, intent.Instructions, result.EntryID)
}

func (b *Bot) cmdTransactions(ctx context.Context, telegramID int64) string {
	if _, err := b.registry.Lookup(ctx, telegramID); err != nil {
		return "You are not registered yet. Please use /start."
	}
	entries, err := b.ledger.ListEntriesForAccount(ctx, telegramID, 5)
	if err != nil {
		return "Could not fetch your transactions, please try again."
	}
	if len(entries) == 0 {
		return "You have no transactions yet."
	}
	var sb strings.Builder
	sb.WriteString("Your latest transactions:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("#%d | %s: %s %s | %s\n", e.ID, e.Kind, e.Amount.String(), e.Currency, e.Status))
	}
	return sb.String()
}

func (b *Bot) cmdStats(ctx context.Context, telegramID int64) string {
	if !b.isAdmin(ctx, telegramID) {
		return "You are not allowed to view statistics."
	}
	stats, err := b.analytics.Snapshot(ctx, 5)
	if err != nil {
		return "Could not compute statistics."
	}
	var sb strings.Builder
	sb.WriteString("Bot statistics:\n")
	sb.WriteString(fmt.Sprintf("Accounts: %d\n", stats.TotalAccounts))
	sb.WriteString(fmt.Sprintf("Transactions: %d\n", stats.TotalEntries))
	sb.WriteString(fmt.Sprintf("Completed deposits: %s\n", stats.TotalDeposits.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Completed withdrawals: %s\n\n", stats.TotalWithdrawals.StringFixed(2)))
	sb.WriteString("Recent transactions:\n")
	for _, e := range stats.Recent {
		sb.WriteString(fmt.Sprintf("#%d | user %d | %s: %s %s | %s\n", e.ID, e.AccountID, e.Kind, e.Amount.String(), e.Currency, e.Status))
	}
	return sb.String()
}

func (b *Bot) cmdTransition(ctx context.Context, telegramID int64, args, status string) string {
	if !b.isAdmin(ctx, telegramID) {
		return "You are not allowed to manage transactions."
	}
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil {
		cmd := "confirm"
		if status == domain.StatusFailed {
			cmd = "fail"
		}
		return "Usage: /" + cmd + " <transaction id>"
	}
	if err := b.ledger.TransitionStatus(ctx, uint(id), status); err != nil {
		return "Could not update the transaction: " + err.Error()
	}
	return fmt.Sprintf("Transaction #%d marked %s.", id, status)
}

func (b *Bot) isAdmin(ctx context.Context, telegramID int64) bool {
	isAdmin, err := b.authorizer.IsAdmin(ctx, telegramID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"telegram_id": telegramID,
			"error":       err.Error(),
		}).Error("Admin check failed")
		return false
	}
	return isAdmin
}
