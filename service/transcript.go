package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vrushabhh97/NormaAI-RAG/model"
	"github.com/vrushabhh97/NormaAI-RAG/pkg/markup"
)

// Fixed answer texts for unresolvable turns.
const (
	answerMissingText = "Sorry, I could not find an answer to that question."
	answerErrorText   = "Sorry, there was an error processing your question."
)

// ErrQuestionPending is returned when a question is submitted while a
// previous one in the same session is still unanswered.
var ErrQuestionPending = errors.New("a question is already pending for this session")

// QuestionAnswerer answers one question against an indexed session.
type QuestionAnswerer interface {
	AskQuestion(ctx context.Context, sessionToken, question string) (string, error)
}

// TranscriptService owns the per-session question/answer transcripts.
// Turns are appended, never reordered or removed; each turn carries a
// stable id assigned at creation and transitions out of the pending
// state exactly once.
type TranscriptService struct {
	answerer QuestionAnswerer
	mu       sync.Mutex
	turns    map[string][]model.Turn
}

func NewTranscriptService(answerer QuestionAnswerer) *TranscriptService {
	return &TranscriptService{
		answerer: answerer,
		turns:    make(map[string][]model.Turn),
	}
}

// Begin appends a pending turn for the question and returns it. The
// turn is visible in the transcript before any remote call is issued.
// At most one pending turn may exist per session; a submission while
// one is outstanding fails with ErrQuestionPending.
func (s *TranscriptService) Begin(sessionID, question string) (model.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.turns[sessionID]
	for i := range list {
		if list[i].State == model.TurnPending {
			return model.Turn{}, ErrQuestionPending
		}
	}

	turn := model.Turn{
		ID:       len(list) + 1,
		Question: question,
		State:    model.TurnPending,
	}
	s.turns[sessionID] = append(list, turn)
	return turn, nil
}

// Resolve sets the final answer on a pending turn. An empty remote
// answer resolves to a fixed apology text. Resolving a turn that is not
// pending is a no-op.
func (s *TranscriptService) Resolve(sessionID string, turnID int, answer string) {
	if answer == "" {
		answer = answerMissingText
	}
	s.transition(sessionID, turnID, answer, model.TurnAnswered)
}

// Fail marks a pending turn with the fixed error text.
func (s *TranscriptService) Fail(sessionID string, turnID int) {
	s.transition(sessionID, turnID, answerErrorText, model.TurnErrored)
}

func (s *TranscriptService) transition(sessionID string, turnID int, answer string, state model.TurnState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.turns[sessionID]
	for i := range list {
		if list[i].ID == turnID && list[i].State == model.TurnPending {
			list[i].Answer = answer
			list[i].AnswerHTML = markup.FormatAnswer(answer)
			list[i].State = state
			return
		}
	}
}

// Ask runs one full question cycle: optimistic pending turn, remote
// call, then resolution of that same turn by id. The returned turn is
// the final state.
func (s *TranscriptService) Ask(ctx context.Context, sessionID, sessionToken, question string) (model.Turn, error) {
	turn, err := s.Begin(sessionID, question)
	if err != nil {
		return model.Turn{}, err
	}

	answer, err := s.answerer.AskQuestion(ctx, sessionToken, question)
	if err != nil {
		slog.Warn("question answering failed",
			"session_id", sessionID,
			"turn_id", turn.ID,
			"error", err,
		)
		s.Fail(sessionID, turn.ID)
	} else {
		s.Resolve(sessionID, turn.ID, answer)
	}

	final, _ := s.Turn(sessionID, turn.ID)
	return final, nil
}

// Turn returns one turn by id.
func (s *TranscriptService) Turn(sessionID string, turnID int) (model.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, turn := range s.turns[sessionID] {
		if turn.ID == turnID {
			return turn, true
		}
	}
	return model.Turn{}, false
}

// List returns a copy of the session transcript in turn order.
func (s *TranscriptService) List(sessionID string) []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.turns[sessionID]
	result := make([]model.Turn, len(list))
	copy(result, list)
	return result
}

// Drop discards the transcript of a deleted session.
func (s *TranscriptService) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
}
