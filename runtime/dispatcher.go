package runtime

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"lan-chat/contract"
	"lan-chat/domain"
	"lan-chat/moderation"
)

// sender is what the dispatcher needs from the session that issued a
// line. Reads stay owned by the session worker; PromptRead is how the
// interactive /history exchange borrows exactly one of them.
type sender interface {
	contract.Peer
	SessionID() string
	Nickname() string
	NickColor() string
	DeliverRaw(text string) error
	PromptRead(prompt string) (string, error)
}

const defaultHistoryCount = 10

// Dispatcher formats and fans out chat lines and commands. All delivery
// iterates over a fresh registry snapshot, so one unresponsive peer can
// only delay its own delivery.
type Dispatcher struct {
	log      *slog.Logger
	registry contract.IRegistry
	history  contract.IHistory
	journal  *Journal
	censor   *moderation.Moderator
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	history contract.IHistory, journal *Journal, censor *moderation.Moderator) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		history:  history,
		journal:  journal,
		censor:   censor,
	}
}

// Broadcast delivers text to every session in a fresh snapshot except
// the excluded one. A failed recipient gets its own teardown; delivery
// to the remaining recipients continues regardless.
func (d *Dispatcher) Broadcast(text string, excluding string) {
	for _, entry := range d.registry.Snapshot() {
		if entry.ID == excluding {
			continue
		}
		if err := entry.Peer.Deliver(text); err != nil {
			d.log.Warn("Delivery failed, dropping recipient", "name", entry.Profile.Name, "error", err)
			entry.Peer.Teardown()
		}
	}
}

// HandleChat processes one plain chat line: censor, format, mention
// check, fan-out, self echo, history append.
func (d *Dispatcher) HandleChat(s sender, message string) {
	text := d.censor.Censor(message)
	formatted := domain.Timestamp() + s.NickColor() + s.Nickname() + domain.Reset + ": " + text

	d.CheckMentions(s.SessionID(), s.Nickname(), text, formatted)
	d.Broadcast(formatted, s.SessionID())
	if err := s.Deliver(formatted); err != nil {
		s.Teardown()
		return
	}
	d.journal.Record(s.Nickname() + ": " + text)
}

// CheckMentions alerts every session whose nickname appears as an @name
// token in the message. A target in do-not-disturb gets no alert; the
// suppressed mention is journaled instead.
func (d *Dispatcher) CheckMentions(senderID, senderName, message, formatted string) {
	for _, entry := range d.registry.Snapshot() {
		if entry.ID == senderID {
			continue
		}
		if !mentioned(message, entry.Profile.Name) {
			continue
		}
		if entry.Profile.Dnd {
			d.journal.Record(fmt.Sprintf("[MENTION] %s -> %s (suppressed, DND active)", senderName, entry.Profile.Name))
			continue
		}
		alert := domain.Bell + domain.AlertColor + "[ALERT]" + domain.Reset + " " +
			domain.SysColor + senderName + " mentioned you!" + domain.Reset + "\r\n" + formatted
		if err := entry.Peer.Deliver(alert); err != nil {
			entry.Peer.Teardown()
			continue
		}
		d.journal.Record(fmt.Sprintf("[MENTION] %s -> %s", senderName, entry.Profile.Name))
	}
}

// mentioned reports whether message targets name with an @name token.
// Trailing punctuation on the token is ignored so "hi @bob!" counts.
func mentioned(message, name string) bool {
	for _, field := range strings.Fields(message) {
		if strings.TrimRight(field, ",.!?;:") == "@"+name {
			return true
		}
	}
	return false
}

// HandleCommand parses and executes one command line. The returned flag
// is true only for /quit; every failure stays local to the sender.
func (d *Dispatcher) HandleCommand(s sender, line string) (quit bool) {
	switch cmd := domain.ParseCommand(line).(type) {
	case domain.Help:
		_ = s.Deliver(helpText)
	case domain.Users:
		d.sendUsers(s)
	case domain.Msg:
		d.privateMessage(s, cmd)
	case domain.Me:
		d.action(s, cmd)
	case domain.Clear:
		_ = s.DeliverRaw(domain.ClearScreen)
	case domain.History:
		d.sendHistory(s)
	case domain.Dnd:
		d.toggleDnd(s, cmd)
	case domain.Quit:
		_ = s.Deliver("Goodbye!")
		return true
	default:
		_ = s.Deliver("Unknown command. Type /help for list.")
	}
	return false
}

var helpText = strings.Join([]string{
	"",
	domain.GreenHacker + "Available commands:" + domain.Reset,
	domain.CmdColor + "/help" + domain.Reset + "    - Show this help message",
	domain.CmdColor + "/users" + domain.Reset + "   - List connected users",
	domain.CmdColor + "/quit" + domain.Reset + "    - Leave the chat",
	domain.CmdColor + "/msg " + domain.SysColor + "<user> <text>" + domain.Reset + " - Send private message",
	domain.CmdColor + "/me " + domain.SysColor + "<text>" + domain.Reset + " - Say something in third person",
	domain.CmdColor + "/clear" + domain.Reset + "   - Clear your screen",
	domain.CmdColor + "/history" + domain.Reset + " - Reload old messages from logs",
	domain.CmdColor + "/dnd " + domain.SysColor + "on" + domain.Reset + "|" + domain.SysColor + "off" + domain.Reset + " - Toggle Do Not Disturb mode",
}, "\r\n")

// sendUsers renders the current snapshot as a plain table with a
// do-not-disturb annotation.
func (d *Dispatcher) sendUsers(s sender) {
	entries := d.registry.Snapshot()
	slices.SortFunc(entries, func(a, b contract.Entry) int {
		return strings.Compare(a.Profile.Name, b.Profile.Name)
	})

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Name", "Status"})
	for _, entry := range entries {
		status := "available"
		if entry.Profile.Dnd {
			status = "DND"
		}
		table.Append([]string{entry.Profile.Name, status})
	}
	table.Render()

	body := strings.ReplaceAll(strings.TrimRight(buf.String(), "\n"), "\n", "\r\n")
	_ = s.Deliver("\r\n" + domain.SysColor + "Connected users:" + domain.Reset + "\r\n" + body)
}

func (d *Dispatcher) privateMessage(s sender, cmd domain.Msg) {
	if cmd.Target == "" || cmd.Text == "" {
		_ = s.Deliver("Usage: /msg <user> <text>")
		return
	}
	entry, found := d.registry.FindByName(cmd.Target, true)
	if !found {
		_ = s.Deliver("User not found.")
		return
	}

	private := domain.Timestamp() + "(private) " + s.NickColor() + s.Nickname() + domain.Reset + ": " + cmd.Text
	outbound := private
	if !entry.Profile.Dnd {
		outbound += domain.Bell
	}
	if err := entry.Peer.Deliver(outbound); err != nil {
		entry.Peer.Teardown()
	}
	if err := s.Deliver(private); err != nil {
		s.Teardown()
		return
	}
	d.journal.Record(fmt.Sprintf("[PM] %s -> %s", s.Nickname(), entry.Profile.Name))
}

func (d *Dispatcher) action(s sender, cmd domain.Me) {
	if cmd.Text == "" {
		_ = s.Deliver("Usage: /me <text>")
		return
	}
	out := domain.Timestamp() + "* " + s.NickColor() + s.Nickname() + domain.Reset + " " + cmd.Text
	d.Broadcast(out, s.SessionID())
	_ = s.Deliver(out)
	d.journal.Record(fmt.Sprintf("* %s %s", s.Nickname(), cmd.Text))
}

// sendHistory performs the single interactive exchange: prompt for a
// count, one blocking read, then stream the tail of the log.
func (d *Dispatcher) sendHistory(s sender) {
	reply, err := s.PromptRead("How many messages to show? (10/30/custom): ")
	if err != nil {
		_ = s.Deliver("Error reading history request.")
		return
	}

	amount := defaultHistoryCount
	if n, convErr := strconv.Atoi(strings.TrimSpace(reply)); convErr == nil {
		amount = n
	}

	lines, err := d.history.Tail(amount)
	if err != nil {
		d.log.Error("History read failed", "error", err)
		_ = s.Deliver("Error loading history.")
		return
	}
	if len(lines) == 0 {
		_ = s.Deliver("No history available.")
		return
	}

	_ = s.Deliver(fmt.Sprintf("\r\n%s--- Last %d messages ---%s", domain.HistoryColor, len(lines), domain.Reset))
	for _, line := range lines {
		if err := s.Deliver(line); err != nil {
			return
		}
	}
	_ = s.Deliver(domain.HistoryColor + "--- End of history ---" + domain.Reset)
}

func (d *Dispatcher) toggleDnd(s sender, cmd domain.Dnd) {
	var enabled bool
	switch cmd.Mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		_ = s.Deliver("Usage: /dnd on|off")
		return
	}

	if !d.registry.SetDnd(s.SessionID(), enabled) {
		return
	}
	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}
	_ = s.Deliver(domain.SysColor + fmt.Sprintf("Do Not Disturb mode %s.", verb) + domain.Reset)
	d.journal.Record(fmt.Sprintf("[DND] %s %s DND mode", s.Nickname(), verb))
}
