package runtime

import (
	"log/slog"

	"lan-chat/contract"
	"lan-chat/domain"
)

// Journal mirrors notable events to the server log and to the history
// store. History is best-effort: an append failure goes to the
// diagnostic logger and is otherwise swallowed, so persistence trouble
// never blocks the chat path.
type Journal struct {
	log     *slog.Logger
	history contract.IHistory
}

func NewJournal(log *slog.Logger, history contract.IHistory) *Journal {
	return &Journal{log: log, history: history}
}

// Record logs one event line and appends its plain-text form to history.
func (j *Journal) Record(line string) {
	plain := domain.StripANSI(line)
	j.log.Info(plain)
	if err := j.history.Append(plain); err != nil {
		j.log.Warn("History append failed", "error", err)
	}
}
