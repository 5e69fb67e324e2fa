// Package middleware implements the pre-dispatch hook chain: pluggable
// checks run after an inbound message is classified as a request but before
// its handler executes. Modeled as a typed interface composed by simple
// iteration, per Design Note 9, rather than the teacher's open-recursion
// MiddlewareFunc-wrapping-a-handler chain in internal/middleware/chain.go.
// file: internal/middleware/hook.go
package middleware

import (
	"context"
	"encoding/json"
)

// Hook is a pre-dispatch check. It receives the inbound method and raw
// params and either permits continuation (nil) or aborts dispatch with the
// returned error, which becomes the response sent back to the peer.
type Hook interface {
	PreDispatch(ctx context.Context, method string, params json.RawMessage) error
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx context.Context, method string, params json.RawMessage) error

// PreDispatch implements Hook.
func (f HookFunc) PreDispatch(ctx context.Context, method string, params json.RawMessage) error {
	return f(ctx, method, params)
}

// Chain is an ordered list of hooks run in registration order. The first
// hook to return an error short-circuits the rest.
type Chain struct {
	hooks []Hook
}

// NewChain builds a chain from zero or more hooks, in the order given.
func NewChain(hooks ...Hook) *Chain {
	return &Chain{hooks: append([]Hook(nil), hooks...)}
}

// Use appends a hook to the end of the chain and returns the chain for
// fluent composition.
func (c *Chain) Use(h Hook) *Chain {
	c.hooks = append(c.hooks, h)
	return c
}

// Run executes every hook in order, stopping at and returning the first error.
func (c *Chain) Run(ctx context.Context, method string, params json.RawMessage) error {
	for _, h := range c.hooks {
		if err := h.PreDispatch(ctx, method, params); err != nil {
			return err
		}
	}
	return nil
}
