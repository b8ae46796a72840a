package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vrushabhh97/NormaAI-RAG/model"
)

// Actionizer converts one finding's text into an imperative action
// description via the upstream service.
type Actionizer interface {
	Actionize(ctx context.Context, issue string) (string, error)
}

// ActionService owns the per-session action-item lists and the
// conversion of card findings into items. Items are only ever appended;
// ids increase monotonically within one session and are never reused.
type ActionService struct {
	actionizer Actionizer
	mu         sync.Mutex
	lists      map[string][]model.ActionItem
}

func NewActionService(actionizer Actionizer) *ActionService {
	return &ActionService{
		actionizer: actionizer,
		lists:      make(map[string][]model.ActionItem),
	}
}

// Convert turns every finding of a card into an action item. All
// actionize calls run concurrently; a failed call only affects its own
// finding, whose item falls back to "<card title>: <finding text>".
// Results keep finding order regardless of completion order. A card
// without findings converts to nothing and returns nil.
func (s *ActionService) Convert(ctx context.Context, sessionID string, card *model.Card) []model.ActionItem {
	if len(card.Issues) == 0 {
		return nil
	}

	texts := make([]string, len(card.Issues))
	g, gctx := errgroup.WithContext(ctx)
	for i, issue := range card.Issues {
		i, issue := i, issue
		g.Go(func() error {
			action, err := s.actionizer.Actionize(gctx, issue)
			if err != nil {
				slog.Warn("actionize failed, using fallback text",
					"session_id", sessionID,
					"card_id", card.ID,
					"error", err,
				)
				texts[i] = fmt.Sprintf("%s: %s", card.Title, issue)
				return nil
			}
			texts[i] = action
			return nil
		})
	}
	// Goroutines never return errors; failures become fallback texts.
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[sessionID]
	created := make([]model.ActionItem, 0, len(texts))
	for _, text := range texts {
		item := model.ActionItem{
			ID:   len(list) + 1,
			Text: text,
		}
		list = append(list, item)
		created = append(created, item)
	}
	s.lists[sessionID] = list

	return created
}

// List returns a copy of the session's action items in creation order.
func (s *ActionService) List(sessionID string) []model.ActionItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[sessionID]
	result := make([]model.ActionItem, len(list))
	copy(result, list)
	return result
}

// Toggle flips the completion flag of one item and returns the updated
// item, or false when the item does not exist.
func (s *ActionService) Toggle(sessionID string, itemID int) (model.ActionItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[sessionID]
	for i := range list {
		if list[i].ID == itemID {
			list[i].Completed = !list[i].Completed
			return list[i], true
		}
	}
	return model.ActionItem{}, false
}

// Drop discards the action list of a deleted session.
func (s *ActionService) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, sessionID)
}
