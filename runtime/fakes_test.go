package runtime

import (
	"fmt"
	"sync"
)

// fakePeer records deliveries in place of a live connection.
type fakePeer struct {
	mu        sync.Mutex
	delivered []string
	failing   bool
	teardowns int
}

func (p *fakePeer) Deliver(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return fmt.Errorf("broken pipe")
	}
	p.delivered = append(p.delivered, text)
	return nil
}

func (p *fakePeer) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardowns++
}

func (p *fakePeer) lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.delivered...)
}

func (p *fakePeer) teardownCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teardowns
}

// fakeSender is a command issuer with a scripted prompt reply.
type fakeSender struct {
	fakePeer
	id          string
	name        string
	color       string
	promptReply string
	promptErr   error
}

func (s *fakeSender) SessionID() string { return s.id }
func (s *fakeSender) Nickname() string  { return s.name }
func (s *fakeSender) NickColor() string { return s.color }

func (s *fakeSender) DeliverRaw(text string) error {
	return s.Deliver(text)
}

func (s *fakeSender) PromptRead(string) (string, error) {
	return s.promptReply, s.promptErr
}

// memHistory is an in-memory IHistory for asserting journal records.
type memHistory struct {
	mu         sync.Mutex
	records    []string
	failAppend bool
}

func (h *memHistory) Append(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failAppend {
		return fmt.Errorf("disk full")
	}
	h.records = append(h.records, line)
	return nil
}

func (h *memHistory) Tail(n int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || len(h.records) == 0 {
		return nil, nil
	}
	if len(h.records) > n {
		return append([]string(nil), h.records[len(h.records)-n:]...), nil
	}
	return append([]string(nil), h.records...), nil
}

func (h *memHistory) lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.records...)
}
