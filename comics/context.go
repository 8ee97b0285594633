package comics

import (
	"fmt"
	"sync"
)

// PanelContext is what one generated panel contributes to the next one.
type PanelContext struct {
	Prompt string
	Image  []byte
}

// ContextTracker remembers each user's generated panels so later panels can
// chain the previous panel's prompt and image. Safe for concurrent use.
type ContextTracker struct {
	mu    sync.Mutex
	users map[string]map[int]PanelContext
}

// NewContextTracker returns an empty tracker.
func NewContextTracker() *ContextTracker {
	return &ContextTracker{
		users: map[string]map[int]PanelContext{},
	}
}

// Store records the generated panel for future context.
func (t *ContextTracker) Store(userID string, panelNumber int, ctx PanelContext) {
	t.mu.Lock()
	defer t.mu.Unlock()

	panels, ok := t.users[userID]
	if !ok {
		panels = map[int]PanelContext{}
		t.users[userID] = panels
	}

	panels[panelNumber] = ctx
}

// Previous returns the context of the panel before the given one. The first
// panel never has context.
func (t *ContextTracker) Previous(userID string, panelNumber int) (PanelContext, bool) {
	if panelNumber <= 1 {
		return PanelContext{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	panels, ok := t.users[userID]
	if !ok {
		return PanelContext{}, false
	}

	ctx, ok := panels[panelNumber-1]
	return ctx, ok
}

// Reset forgets everything stored for the user.
func (t *ContextTracker) Reset(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.users, userID)
}

// ChainPrompt builds the generation prompt for a panel that continues a
// previous one.
func ChainPrompt(previous PanelContext, prompt string) string {
	return fmt.Sprintf("Create the next scene using this context: %s. %s", previous.Prompt, prompt)
}
