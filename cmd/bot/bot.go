package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"time"
)

var sampleMessages = []string{
	"Hello everyone!",
	"Anyone up for a game later?",
	"Just testing the server.",
	"Nice!",
	"Who is admin here?",
	"Bug? I see nothing.",
	"I have to leave in 5 minutes.",
	"Busy day today.",
	"What's the password? (joking)",
	"Hehe :D",
}

// weighted action table: plain chat dominates, teardown paths are rare.
var actions = []struct {
	name   string
	weight int
}{
	{"message", 60},
	{"pm", 10},
	{"me", 8},
	{"dnd", 6},
	{"history", 4},
	{"clear", 4},
	{"quit", 4},
	{"disconnect", 4},
}

// bot is one simulated client. It owns its connection and runs until
// the context ends, the server drops it, or a random quit/disconnect
// action fires.
type bot struct {
	log      *slog.Logger
	addr     string
	rate     time.Duration
	unstable bool
	name     string
	conn     net.Conn
}

func newBot(log *slog.Logger, addr string, rate time.Duration, unstable bool) *bot {
	return &bot{
		log:      log,
		addr:     addr,
		rate:     rate,
		unstable: unstable,
		name:     fmt.Sprintf("Bot%d", rand.Intn(9000)+1000),
	}
}

func (b *bot) run(ctx context.Context) {
	if err := b.connect(); err != nil {
		b.log.Warn("Connect failed", "bot", b.name, "error", err)
		return
	}
	defer func() {
		if b.conn != nil {
			_ = b.conn.Close()
		}
	}()

	for {
		wait := time.Duration(rand.ExpFloat64() * float64(b.rate))
		select {
		case <-ctx.Done():
			b.disconnectClean()
			return
		case <-time.After(wait):
		}

		// Occasionally drain server chatter so the socket buffer does
		// not fill up and stall the server's write path.
		b.drain(100 * time.Millisecond)

		if b.unstable && rand.Float64() < 0.02 {
			b.disconnectDirty()
			return
		}

		if done := b.randomAction(); done {
			return
		}
	}
}

// connect dials the server and walks through nickname negotiation.
func (b *bot) connect() error {
	conn, err := net.DialTimeout("tcp", b.addr, 5*time.Second)
	if err != nil {
		return err
	}
	b.conn = conn

	b.drain(time.Second) // welcome banner + nickname prompt
	if err := b.sendLine(b.name); err != nil {
		return err
	}
	b.drain(time.Second) // welcome message
	b.log.Debug("Bot connected", "bot", b.name)
	return nil
}

// randomAction performs one weighted action; true means the bot is done.
func (b *bot) randomAction() bool {
	var err error
	switch pickAction() {
	case "message":
		err = b.sendLine(sampleMessages[rand.Intn(len(sampleMessages))])
	case "pm":
		target := fmt.Sprintf("Bot%d", rand.Intn(9000)+1000)
		err = b.sendLine(fmt.Sprintf("/msg %s [PM] %s", target, sampleMessages[rand.Intn(len(sampleMessages))]))
	case "me":
		err = b.sendLine("/me does a random action")
	case "dnd":
		modes := []string{"on", "off"}
		err = b.sendLine("/dnd " + modes[rand.Intn(2)])
	case "history":
		if err = b.sendLine("/history"); err != nil {
			break
		}
		time.Sleep(200 * time.Millisecond)
		err = b.sendLine(fmt.Sprintf("%d", rand.Intn(46)+5))
		b.drain(500 * time.Millisecond)
	case "clear":
		err = b.sendLine("/clear")
	case "quit":
		b.disconnectClean()
		return true
	case "disconnect":
		if rand.Float64() < 0.5 {
			b.disconnectDirty()
		} else {
			b.disconnectClean()
		}
		return true
	}

	if err != nil {
		b.log.Debug("Action failed, bot exiting", "bot", b.name, "error", err)
		return true
	}
	return false
}

func pickAction() string {
	total := 0
	for _, a := range actions {
		total += a.weight
	}
	n := rand.Intn(total)
	for _, a := range actions {
		if n < a.weight {
			return a.name
		}
		n -= a.weight
	}
	return actions[0].name
}

func (b *bot) sendLine(line string) error {
	_ = b.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := b.conn.Write([]byte(line + "\r\n"))
	return err
}

// drain reads and discards whatever the server pushed until the window
// elapses.
func (b *bot) drain(window time.Duration) {
	_ = b.conn.SetReadDeadline(time.Now().Add(window))
	buf := make([]byte, 4096)
	for {
		if _, err := b.conn.Read(buf); err != nil {
			return
		}
	}
}

func (b *bot) disconnectClean() {
	_ = b.sendLine("/quit")
	_ = b.conn.Close()
	b.log.Debug("Bot disconnected cleanly", "bot", b.name)
}

func (b *bot) disconnectDirty() {
	_ = b.conn.Close()
	b.log.Debug("Bot disconnected abruptly", "bot", b.name)
}
