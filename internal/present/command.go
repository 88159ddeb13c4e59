package present

import (
	"encoding/json"
	"fmt"
)

// CommandType names an inbound player command.
type CommandType string

const (
	CommandBuy      CommandType = "buy"
	CommandContinue CommandType = "continue"
	CommandNewGame  CommandType = "new_game"
)

// Command is one player action waiting for the input phase.
type Command struct {
	Type   CommandType `json:"type"`
	Kind   string      `json:"kind,omitempty"`
	Client string      `json:"-"`
}

// ParseCommand decodes and checks a JSON command.
func ParseCommand(raw []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CommandBuy:
		if c.Kind == "" {
			return Command{}, fmt.Errorf("buy command without kind")
		}
	case CommandContinue, CommandNewGame:
	default:
		return Command{}, fmt.Errorf("unknown command type %q", c.Type)
	}
	return c, nil
}

// CommandSource queues commands produced off the game loop.
type CommandSource interface {
	// Drain returns up to max queued commands without blocking.
	Drain(max int) []Command
}

// Queue is a bounded command buffer safe for concurrent producers.
type Queue struct {
	ch chan Command
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Command, size)}
}

// Push enqueues c, reporting false when the queue is full.
func (q *Queue) Push(c Command) bool {
	select {
	case q.ch <- c:
		return true
	default:
		return false
	}
}

func (q *Queue) Drain(max int) []Command {
	var out []Command
	for len(out) < max {
		select {
		case c := <-q.ch:
			out = append(out, c)
		default:
			return out
		}
	}
	return out
}

// Len is the number of queued commands.
func (q *Queue) Len() int { return len(q.ch) }
