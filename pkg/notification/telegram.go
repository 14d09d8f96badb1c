// Package notification implements the Telegram command and announcement
// surface of the bot.
package notification

import (
	"context"
	"fmt"
	"math/rand"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/geckobot/pkg/coingecko"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/format"
	"github.com/raykavin/geckobot/pkg/registry"
	log "github.com/sirupsen/logrus"
	naturaldate "github.com/tj/go-naturaldate"
	tb "gopkg.in/tucnak/telebot.v2"
)

const (
	commandTimeout      = 30 * time.Second
	defaultHistoryStart = "1 year ago"
)

// Quoter provides an exchange cross quote for a ticker symbol.
type Quoter interface {
	LastQuote(ctx context.Context, symbol string) (float64, error)
}

// telegram implements the core.NotifierWithStart interface
type telegram struct {
	settings    *core.Settings
	registry    *registry.Registry
	market      *coingecko.Client
	quoter      Quoter
	choose      func(n int) int
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
}

// Option is a function that configures a telegram instance
type Option func(telegram *telegram)

// WithChooser replaces the random tie-break used for ambiguous symbols.
func WithChooser(choose func(n int) int) Option {
	return func(t *telegram) {
		t.choose = choose
	}
}

// WithQuoter adds an exchange cross quote to price replies.
func WithQuoter(quoter Quoter) Option {
	return func(t *telegram) {
		t.quoter = quoter
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(reg *registry.Registry, market *coingecko.Client, settings *core.Settings, options ...Option) (core.NotifierWithStart, error) {
	// Initialize menu and poller
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	// Create user authorization middleware
	userMiddleware := createAuthMiddleware(poller, settings)

	// Initialize bot client
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	// Setup keyboard and commands
	setupKeyboard(menu)
	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	// Create and configure bot instance
	bot := &telegram{
		settings:    settings,
		registry:    reg,
		market:      market,
		choose:      rand.Intn,
		defaultMenu: menu,
		client:      client,
	}

	// Apply custom options if provided
	for _, option := range options {
		option(bot)
	}

	// Register command handlers
	registerHandlers(client, bot)

	return bot, nil
}

// createAuthMiddleware creates a middleware to validate authorized users.
// With no configured users the bot answers everyone.
func createAuthMiddleware(poller *tb.LongPoller, settings *core.Settings) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			return false
		}

		if len(settings.Telegram.Users) == 0 {
			return true
		}

		if slices.Contains(settings.Telegram.Users, int(u.Message.Sender.ID)) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

// setupKeyboard configures the reply keyboard layout
func setupKeyboard(menu *tb.ReplyMarkup) {
	// Define keyboard buttons
	var (
		priceBtn   = menu.Text("/price")
		infoBtn    = menu.Text("/info")
		randomBtn  = menu.Text("/random")
		historyBtn = menu.Text("/history")
		helpBtn    = menu.Text("/help")
	)

	// Arrange keyboard layout
	menu.Reply(
		menu.Row(priceBtn, infoBtn, randomBtn),
		menu.Row(historyBtn, helpBtn),
	)
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/info", Description: "Information/website for a cryptocurrency"},
		{Text: "/price", Description: "Price information for a cryptocurrency"},
		{Text: "/history", Description: "Price history for a cryptocurrency"},
		{Text: "/random", Description: "Information about a random cryptocurrency"},
		{Text: "/set", Description: "Pin a symbol to a specific coin id"},
		{Text: "/ping", Description: "Check the market-data API"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *telegram) {
	client.Handle("/start", bot.guard("start", bot.StartHandle))
	client.Handle("/help", bot.guard("help", bot.HelpHandle))
	client.Handle("/info", bot.guard("info", bot.InfoHandle))
	client.Handle("/price", bot.guard("price", bot.PriceHandle))
	client.Handle("/history", bot.guard("history", bot.HistoryHandle))
	client.Handle("/random", bot.guard("random", bot.RandomHandle))
	client.Handle("/set", bot.guard("set", bot.SetHandle))
	client.Handle("/ping", bot.guard("ping", bot.PingHandle))
}

// guard wraps a handler so a panic is reported to the operator log channel
// instead of killing the poller.
func (t *telegram) guard(name string, fn func(*tb.Message)) func(*tb.Message) {
	return func(m *tb.Message) {
		defer func() {
			if r := recover(); r != nil {
				t.reportCrash(name, r, debug.Stack())
			}
		}()
		fn(m)
	}
}

// reportCrash logs a handler panic and forwards it to the log channel.
// Delivery is best effort; the end user gets no reply.
func (t *telegram) reportCrash(name string, value any, stack []byte) {
	log.Errorf("command %s crashed: %v\n%s", name, value, stack)

	if t.settings.Telegram.LogChannel == 0 {
		return
	}

	text := fmt.Sprintf("🛑 command /%s crashed: %v\n```\n%s\n```", name, value, stack)
	if _, err := t.client.Send(tb.ChatID(t.settings.Telegram.LogChannel), text); err != nil {
		log.WithError(err).Error("failed to report crash")
	}
}

// Start begins the Telegram bot session.
func (t *telegram) Start() {
	go t.client.Start()
	t.Notify("Bot initialized.")
}

// Stop terminates the Telegram bot session.
func (t *telegram) Stop() {
	t.client.Stop()
}

// Notify sends a message to all authorized users
func (t *telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text, t.defaultMenu); err != nil {
			log.WithError(err).Error("failed to send notification")
		}
	}
}

// OnError forwards an error to the log channel, falling back to the
// authorized users.
func (t *telegram) OnError(err error) {
	text := fmt.Sprintf("🛑 ERROR\n-----\n%s", err.Error())

	if t.settings.Telegram.LogChannel != 0 {
		if _, sendErr := t.client.Send(tb.ChatID(t.settings.Telegram.LogChannel), text); sendErr != nil {
			log.WithError(sendErr).Error("failed to send error report")
		}
		return
	}

	t.Notify(text)
}

// AnnounceNewCoin sends a newly-listed coin document to the announcement
// channel.
func (t *telegram) AnnounceNewCoin(doc core.Document) {
	if t.settings.Telegram.NewCoinsChannel == 0 {
		return
	}
	t.sendDocument(tb.ChatID(t.settings.Telegram.NewCoinsChannel), doc)
}

// StartHandle greets the user with the default keyboard
func (t *telegram) StartHandle(m *tb.Message) {
	t.send(m.Sender, "I do crypto stuff. Try /help.", t.defaultMenu)
}

// HelpHandle displays available commands
func (t *telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		log.WithError(err).Error("failed to get commands")
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands)+2)
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("%s - %s", command.Text, command.Description))
	}
	lines = append(lines,
		"",
		"Commands take a coin symbol or id, e.g. `/price btc` or `/price bitcoin true`.",
		"History accepts date expressions: `/history btc | 6 months ago | yesterday`.",
	)

	t.send(m.Sender, strings.Join(lines, "\n"))
}

// PingHandle checks upstream connectivity
func (t *telegram) PingHandle(m *tb.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := t.market.Ping(ctx); err != nil {
		t.send(m.Sender, "CoinGecko did not answer.")
		return
	}
	t.send(m.Sender, "CoinGecko is alive.")
}

// InfoHandle answers /info <id_or_symbol> [is_id]
func (t *telegram) InfoHandle(m *tb.Message) {
	query, isID := splitQuery(m.Payload)
	if query == "" {
		t.send(m.Sender, "Usage: `/info <symbol or id> [is_id]`")
		return
	}

	id, warning, ok := t.resolve(query, isID)
	if !ok {
		t.send(m.Sender, notFoundMessage(query))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	detail, err := t.market.CoinByID(ctx, id)
	if err != nil {
		t.send(m.Sender, couldNotRetrieve(id))
		return
	}

	doc := format.CoinInfo(detail)
	doc.Footer = warning
	t.sendDocument(m.Sender, doc)
}

// PriceHandle answers /price <id_or_symbol> [is_id]
func (t *telegram) PriceHandle(m *tb.Message) {
	query, isID := splitQuery(m.Payload)
	if query == "" {
		t.send(m.Sender, "Usage: `/price <symbol or id> [is_id]`")
		return
	}

	id, warning, ok := t.resolve(query, isID)
	if !ok {
		t.send(m.Sender, notFoundMessage(query))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	detail, err := t.market.CoinByID(ctx, id)
	if err != nil {
		t.send(m.Sender, couldNotRetrieve(id))
		return
	}

	doc := format.PriceInfo(detail)
	doc.Footer = warning

	if t.quoter != nil {
		if quote, quoteErr := t.quoter.LastQuote(ctx, detail.Symbol); quoteErr == nil {
			doc.Fields = append(doc.Fields, core.Field{
				Name:  "Binance",
				Value: format.PriceString(quote, "USDT"),
			})
		}
	}

	t.sendDocument(m.Sender, doc)
}

// HistoryHandle answers /history <id_or_symbol> [is_id] [| start [| end]]
func (t *telegram) HistoryHandle(m *tb.Message) {
	parts := strings.Split(m.Payload, "|")
	query, isID := splitQuery(parts[0])
	if query == "" {
		t.send(m.Sender, "Usage: `/history <symbol or id> [is_id] | <start> | <end>`")
		return
	}

	id, warning, ok := t.resolve(query, isID)
	if !ok {
		t.send(m.Sender, notFoundMessage(query))
		return
	}

	now := time.Now()

	startExpr := defaultHistoryStart
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		startExpr = strings.TrimSpace(parts[1])
	}
	from, err := naturaldate.Parse(startExpr, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		t.send(m.Sender, fmt.Sprintf("I could not make sense of the start time %q.", startExpr))
		return
	}

	to := now
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		endExpr := strings.TrimSpace(parts[2])
		to, err = naturaldate.Parse(endExpr, now, naturaldate.WithDirection(naturaldate.Past))
		if err != nil {
			t.send(m.Sender, fmt.Sprintf("I could not make sense of the end time %q.", endExpr))
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	chart, err := t.market.MarketChartRange(ctx, id, "usd", from, to)
	if err != nil || len(chart.Prices) == 0 {
		t.send(m.Sender, couldNotRetrieve(id))
		return
	}

	name := id
	if record, found := t.registry.CoinInfo(id); found && record.Name != "" {
		name = record.Name
	}

	text := "```\n" + format.HistorySummary(name, chart.Prices, from, to) + "```"
	if warning != "" {
		text += "\n_" + warning + "_"
	}
	t.send(m.Sender, text)
}

// RandomHandle answers /random
func (t *telegram) RandomHandle(m *tb.Message) {
	id, err := t.registry.RandomCoinID()
	if err != nil {
		t.send(m.Sender, "No coins loaded yet, try again in a moment.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	detail, detailErr := t.market.CoinByID(ctx, id)
	if detailErr != nil {
		t.send(m.Sender, couldNotRetrieve(id))
		return
	}

	t.sendDocument(m.Sender, format.CoinInfo(detail))
}

// SetHandle answers /set <symbol> <id>. The id is validated against the
// symbol's current candidate set once, here; the registry stores it as-is.
// Overrides live in memory (and the optional override store) only.
func (t *telegram) SetHandle(m *tb.Message) {
	if !t.isAdmin(m.Sender) {
		t.send(m.Sender, "Only configured operators can set symbol overrides.")
		return
	}

	fields := strings.Fields(m.Payload)
	if len(fields) != 2 {
		t.send(m.Sender, "Usage: `/set <symbol> <id>`")
		return
	}

	symbol := strings.ToUpper(fields[0])
	id := strings.ToLower(fields[1])

	candidates := t.registry.Candidates(symbol)
	if !slices.Contains(candidates, id) {
		t.send(m.Sender, fmt.Sprintf(
			"Unfortunately coin/token %s doesn't appear to exist or %s doesn't map to %s.", symbol, id, symbol))
		return
	}

	if err := t.registry.SetPreferred(symbol, id); err != nil {
		log.WithError(err).Error("failed to persist override")
		t.OnError(err)
	}

	t.send(m.Sender, fmt.Sprintf("I've set %s to specify %s.", symbol, id))
}

// resolve maps user input to a coin id. With isID the input is trusted
// as-is; otherwise the registry resolves the symbol, breaking ties with a
// uniform random choice and a warning naming the pick and all candidates.
func (t *telegram) resolve(query string, isID bool) (id, warning string, ok bool) {
	if isID {
		return strings.ToLower(query), "", true
	}

	id, candidates := t.registry.Lookup(query)
	if id != "" {
		return id, "", true
	}

	switch len(candidates) {
	case 0:
		return "", "", false
	case 1:
		return candidates[0], "", true
	default:
		pick := candidates[t.choose(len(candidates))]
		warning = fmt.Sprintf("Warning: multiple coins map to this symbol.\nPicked %s from {%s}",
			pick, strings.Join(candidates, ", "))
		return pick, warning, true
	}
}

// isAdmin reports whether the sender may run operator commands. With no
// configured users every sender is an operator.
func (t *telegram) isAdmin(user *tb.User) bool {
	if len(t.settings.Telegram.Users) == 0 {
		return true
	}
	return user != nil && slices.Contains(t.settings.Telegram.Users, int(user.ID))
}

// sendDocument renders a document to markdown and sends it, attaching a
// website button when the document carries one.
func (t *telegram) sendDocument(to tb.Recipient, doc core.Document) {
	options := make([]interface{}, 0, 1)
	if doc.Website != "" {
		options = append(options, &tb.ReplyMarkup{
			InlineKeyboard: [][]tb.InlineButton{{{Text: "Website", URL: doc.Website}}},
		})
	}

	t.send(to, renderDocument(doc), options...)
}

// send delivers a message and logs delivery failures.
func (t *telegram) send(to tb.Recipient, text string, options ...interface{}) {
	if _, err := t.client.Send(to, text, options...); err != nil {
		log.WithError(err).Error("failed to send message")
	}
}

// renderDocument flattens a display document into Telegram markdown.
func renderDocument(doc core.Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*%s*\n", doc.Title)
	if doc.URL != "" {
		sb.WriteString(doc.URL + "\n")
	}
	if doc.Description != "" {
		sb.WriteString("\n" + doc.Description + "\n")
	}
	if len(doc.Fields) > 0 {
		sb.WriteString("\n")
		for _, field := range doc.Fields {
			fmt.Fprintf(&sb, "*%s:* %s\n", field.Name, field.Value)
		}
	}
	if doc.Footer != "" {
		sb.WriteString("\n_" + doc.Footer + "_")
	}

	return sb.String()
}

// splitQuery parses "<query> [is_id]" from a command payload.
func splitQuery(payload string) (query string, isID bool) {
	fields := strings.Fields(strings.TrimSpace(payload))
	if len(fields) == 0 {
		return "", false
	}

	query = fields[0]
	if len(fields) > 1 {
		if parsed, err := strconv.ParseBool(fields[1]); err == nil {
			isID = parsed
		} else if strings.EqualFold(fields[1], "id") || strings.EqualFold(fields[1], "is_id") {
			isID = true
		}
	}

	return query, isID
}

func notFoundMessage(query string) string {
	return fmt.Sprintf("Unfortunately coin/token %s doesn't appear to exist.", query)
}

func couldNotRetrieve(id string) string {
	return fmt.Sprintf("Could not retrieve data for %s.", id)
}
