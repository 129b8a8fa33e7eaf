package alert

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

const divider = "━━━━━━━━━━━━━━━━━━━━"

// commandList is appended to the startup and help messages
const commandList = "⏸ /pause - Pause scanning\n" +
	"▶️ /resume - Resume scanning\n" +
	"📊 /stats - Session report\n" +
	"❓ /help - Show this message"

// FormatterConfig holds the settings rendered into operator messages
type FormatterConfig struct {
	PaperTrading       bool
	PriorityBookmakers []string
}

// Formatter renders opportunities and status messages as Telegram HTML
type Formatter struct {
	paperTrading bool
	priority     map[string]bool
}

// StartupInfo describes the running configuration announced on startup
type StartupInfo struct {
	Sports           []string
	Bookmakers       []string
	MinProfitPercent decimal.Decimal
	Bankroll         decimal.Decimal
	PollInterval     time.Duration
	Mode             models.EvaluationMode
}

// NewFormatter creates a new message formatter
func NewFormatter(config FormatterConfig) *Formatter {
	priority := make(map[string]bool, len(config.PriorityBookmakers))
	for _, book := range config.PriorityBookmakers {
		priority[book] = true
	}
	return &Formatter{
		paperTrading: config.PaperTrading,
		priority:     priority,
	}
}

func (f *Formatter) modeTag() string {
	if f.paperTrading {
		return "📄 PAPER"
	}
	return "💰 LIVE"
}

// profitEmoji grades an opportunity by profit percent
func profitEmoji(profit decimal.Decimal) string {
	switch {
	case profit.GreaterThanOrEqual(decimal.NewFromInt(5)):
		return "🤑"
	case profit.GreaterThanOrEqual(decimal.NewFromInt(3)):
		return "💰"
	case profit.GreaterThanOrEqual(decimal.NewFromInt(2)):
		return "✅"
	default:
		return "⚡"
	}
}

// sideEmojis label successive sides of an opportunity
var sideEmojis = []string{"📗", "📘", "📙", "📕"}

// Opportunity formats an arbitrage alert
func (f *Formatter) Opportunity(opp *models.Opportunity) string {
	var sb strings.Builder
	emoji := profitEmoji(opp.ProfitPercent)

	sport := opp.SportLabel
	if sport == "" {
		sport = opp.Sport
	}

	sb.WriteString(fmt.Sprintf("%s <b>ARB DETECTED [%s] - %s</b>\n", emoji, f.modeTag(), html.EscapeString(sport)))
	sb.WriteString(fmt.Sprintf("<b>%s @ %s</b>\n", html.EscapeString(opp.AwayTeam), html.EscapeString(opp.HomeTeam)))
	sb.WriteString(fmt.Sprintf("🕐 %s\n", StartTime(opp.StartTime, opp.StartTimeRaw)))
	sb.WriteString(divider + "\n")

	for i, side := range opp.Sides {
		tag := ""
		if f.priority[side.Bookmaker] {
			tag = " ⭐"
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b>%s\n", sideEmojis[i%len(sideEmojis)], html.EscapeString(strings.ToUpper(side.Bookmaker)), tag))
		sb.WriteString(fmt.Sprintf("   %s @ <b>%s</b>\n", html.EscapeString(side.Outcome), side.Odd.String()))
		sb.WriteString(fmt.Sprintf("   Stake: <b>$%s</b>\n", side.Stake.StringFixed(2)))
	}

	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("%s Guaranteed profit: <b>$%s</b> (<b>%s%%</b>)\n",
		emoji, opp.ProfitAmount.StringFixed(2), opp.ProfitPercent.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("   On a bankroll of $%s\n", opp.Bankroll.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("⏱ Detected: %s\n", opp.DetectedAt.UTC().Format("2006-01-02 15:04:05")))

	if f.paperTrading {
		sb.WriteString("📄 <i>Paper trade, no real bet placed</i>")
	} else {
		sb.WriteString("⚠️ <b>ACT FAST!</b>")
	}

	return sb.String()
}

// StartTime renders an event start, falling back to the raw feed value
func StartTime(start time.Time, raw string) string {
	if start.IsZero() {
		return html.EscapeString(raw)
	}
	return start.UTC().Format("02/01 15:04 UTC")
}

// Stats formats the session report
func (f *Formatter) Stats(stats models.SessionStats, now time.Time) string {
	status := "▶️ ACTIVE"
	if stats.Paused {
		status = "⏸ PAUSED"
	}

	elapsed := now.Sub(stats.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60

	var sb strings.Builder
	sb.WriteString("📊 <b>Session report</b>\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Status: <b>%s</b>\n", status))
	sb.WriteString(fmt.Sprintf("⏱ Uptime: %dh %dm\n", hours, minutes))
	sb.WriteString(fmt.Sprintf("🔍 Scans: %d\n", stats.Scans))
	sb.WriteString(fmt.Sprintf("📡 API calls: %d\n", stats.FeedCalls))
	sb.WriteString(fmt.Sprintf("🎯 Opportunities: %d\n", stats.OpportunitiesFound))
	if stats.AlertsFailed > 0 {
		sb.WriteString(fmt.Sprintf("❗ Failed alerts: %d\n", stats.AlertsFailed))
	}
	sb.WriteString(fmt.Sprintf("🏆 Best profit: <b>%s%%</b>", stats.BestProfitPercent.StringFixed(2)))
	return sb.String()
}

// Startup formats the message sent when the scanner starts
func (f *Formatter) Startup(info StartupInfo) string {
	mode := "📄 PAPER TRADING"
	if !f.paperTrading {
		mode = "💰 LIVE BETTING"
	}

	var sb strings.Builder
	sb.WriteString("🚀 <b>Arb scanner started</b>\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(fmt.Sprintf("Mode: <b>%s</b>\n", mode))
	sb.WriteString(fmt.Sprintf("Sports: %s\n", html.EscapeString(strings.Join(info.Sports, ", "))))
	sb.WriteString(fmt.Sprintf("Bookmakers: %s\n", html.EscapeString(strings.Join(info.Bookmakers, ", "))))
	sb.WriteString(fmt.Sprintf("Evaluation: %s\n", info.Mode))
	sb.WriteString(fmt.Sprintf("Min profit: <b>%s%%</b>\n", info.MinProfitPercent.String()))
	sb.WriteString(fmt.Sprintf("Bankroll: <b>$%s</b>\n", info.Bankroll.String()))
	sb.WriteString(fmt.Sprintf("Interval: <b>%s</b>\n", Interval(info.PollInterval)))
	sb.WriteString(divider + "\n")
	sb.WriteString("💬 Commands: /pause /resume /stats /help")
	return sb.String()
}

// Interval renders a poll interval in whole minutes, or seconds below a minute
func Interval(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d s", int(d.Seconds()))
	}
	return fmt.Sprintf("%d min", int(d.Minutes()))
}

// Shutdown formats the message sent when the scanner stops
func (f *Formatter) Shutdown() string {
	return "⛔ <b>Scanner stopped.</b>"
}

// Help formats the command list
func (f *Formatter) Help() string {
	return "🤖 <b>Available commands:</b>\n\n" + commandList
}

// Paused formats the reply to an accepted /pause
func (f *Formatter) Paused() string {
	return "⏸ <b>Scanner paused.</b>\n" +
		"No API requests will be made.\n" +
		"Send /resume to continue."
}

// AlreadyPaused formats the reply to /pause while paused
func (f *Formatter) AlreadyPaused() string {
	return "⏸ Scanner already paused."
}

// Resumed formats the reply to an accepted /resume
func (f *Formatter) Resumed(pollInterval time.Duration) string {
	return "▶️ <b>Scanner resumed!</b>\n" +
		fmt.Sprintf("Next scan in ~%s.", Interval(pollInterval))
}

// AlreadyActive formats the reply to /resume while active
func (f *Formatter) AlreadyActive() string {
	return "▶️ Scanner already active."
}

// QuotaWarning formats the low feed quota warning
func (f *Formatter) QuotaWarning(remaining int) string {
	return "⚠️ <b>Low API quota!</b>\n" +
		fmt.Sprintf("Only <b>%d</b> requests remaining.\n", remaining) +
		"Send /pause to save requests."
}
