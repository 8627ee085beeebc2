package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"thematica/internal/llm"
	"thematica/internal/types"
)

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// scriptedClient returns canned responses keyed by inspecting the prompt,
// recording every prompt it sees.
type scriptedClient struct {
	mu      sync.Mutex
	prompts []string
	respond func(call int, prompt string) (string, error)
}

func (c *scriptedClient) Name() string { return "scripted" }
func (c *scriptedClient) Close() error { return nil }

func (c *scriptedClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	call := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.respond(call, prompt)
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func newTestGateway(c *scriptedClient) *llm.Gateway {
	return llm.NewGateway(c, llm.DefaultRepairPolicy(), zerolog.Nop())
}

func testThemes() []types.Theme {
	return []types.Theme{
		{ID: "t1", Name: "Costs", SubThemes: []types.SubTheme{
			{ID: "s1-1", Name: "Money", Description: "Financial constraints."},
			{ID: "s1-2", Name: "Effort", Description: "Workload and energy."},
		}},
		{ID: "t2", Name: "Time", SubThemes: []types.SubTheme{
			{ID: "s2-1", Name: "Deadlines", Description: "Time pressure and schedules."},
		}},
	}
}
