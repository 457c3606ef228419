package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
)

var (
	ErrQuizComplete      = errors.New("quiz session is complete")
	ErrNoPendingQuestion = errors.New("no question is awaiting an answer")
	ErrEmptyAnswer       = errors.New("answer must not be empty")
	ErrInvalidHistory    = errors.New("quiz history entries need both question and answer")
)

// State of a quiz session.
type State int

const (
	Collecting State = iota
	Complete
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine performs the generation calls of a quiz.
type Engine interface {
	NextStep(ctx context.Context, history []quiz.Turn) (quiz.Step, error)
	Recommend(ctx context.Context, history []quiz.Turn) ([]quiz.Recommendation, error)
}

// Outcome is what one Advance produced: the next question while collecting, the
// recommendations once complete.
type Outcome struct {
	State           State
	Step            *quiz.Step
	Recommendations []quiz.Recommendation
}

// Machine is the caller-held state of one quiz session. It is not safe for concurrent use.
type Machine struct {
	engine          Engine
	state           State
	history         []quiz.Turn
	pending         *quiz.Step
	recommendations []quiz.Recommendation
	// stored is set once the recommendation set has been persisted.
	stored bool
}

// NewMachine starts a session in Collecting with an empty history.
func NewMachine(engine Engine) *Machine {
	return &Machine{engine: engine, state: Collecting}
}

// Restore rebuilds a Collecting session from a caller-supplied history.
func Restore(engine Engine, history []quiz.Turn) (*Machine, error) {
	m := NewMachine(engine)
	for _, turn := range history {
		if strings.TrimSpace(turn.Question) == "" || strings.TrimSpace(turn.Answer) == "" {
			return nil, ErrInvalidHistory
		}
		m.history = append(m.history, turn)
	}
	return m, nil
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// History returns a copy of the answered turns.
func (m *Machine) History() []quiz.Turn {
	return append([]quiz.Turn(nil), m.history...)
}

// Pending returns the question awaiting an answer, if any.
func (m *Machine) Pending() (quiz.Step, bool) {
	if m.pending == nil {
		return quiz.Step{}, false
	}
	return *m.pending, true
}

// Recommendations returns the terminal output, nil until the session completed successfully.
func (m *Machine) Recommendations() []quiz.Recommendation {
	return append([]quiz.Recommendation(nil), m.recommendations...)
}

// Advance runs one round. While collecting it asks the engine for the next step; a completed
// step moves the machine to Complete and triggers the single recommendation call. A question
// that is still unanswered is returned again without a new call.
func (m *Machine) Advance(ctx context.Context) (Outcome, error) {
	switch m.state {
	case Collecting:
		if m.pending != nil {
			step := *m.pending
			return Outcome{State: Collecting, Step: &step}, nil
		}

		step, err := m.engine.NextStep(ctx, m.History())
		if err != nil {
			return Outcome{}, err
		}
		if !step.IsComplete {
			m.pending = &step
			emitted := step
			return Outcome{State: Collecting, Step: &emitted}, nil
		}

		m.state = Complete
		return m.recommend(ctx)
	case Complete:
		// Only a failed recommendation call may be repeated.
		if m.recommendations != nil {
			return Outcome{}, ErrQuizComplete
		}
		return m.recommend(ctx)
	default:
		return Outcome{}, fmt.Errorf("quiz: unknown state %s", m.state)
	}
}

// Answer records the caller's answer to the pending question as a new turn.
func (m *Machine) Answer(answer string) error {
	switch m.state {
	case Complete:
		return ErrQuizComplete
	case Collecting:
		if m.pending == nil {
			return ErrNoPendingQuestion
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return ErrEmptyAnswer
		}
		m.history = append(m.history, quiz.Turn{Question: m.pending.Question, Answer: answer})
		m.pending = nil
		return nil
	default:
		return fmt.Errorf("quiz: unknown state %s", m.state)
	}
}

func (m *Machine) recommend(ctx context.Context) (Outcome, error) {
	recs, err := m.engine.Recommend(ctx, m.History())
	if err != nil {
		return Outcome{}, err
	}
	m.recommendations = recs
	return Outcome{State: Complete, Recommendations: m.Recommendations()}, nil
}
