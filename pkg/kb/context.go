package kb

import (
	"context"

	"github.com/corvidlabs/proofkit/pkg/term"
)

// This file threads the small set of ambient values a running proof
// needs — the current knowledge base, a fresh-variable source, a
// fresh-constant source — explicitly through context.Context, replacing
// aitools/logic/knowledge_base.py's thread-local mutable globals
// (_current_kb/_current_variable_source). Because nothing here mutates
// a shared global, there is nothing to save and restore around
// generator resumption: a child context simply carries its own values.

type ambientKey int

const (
	keyKnowledgeBase ambientKey = iota
	keyVariables
	keyConstants
	keyInsideTask
)

// WithKnowledgeBase returns a context carrying kb as the ambient
// knowledge base reachable by any handler running under it.
func WithKnowledgeBase(ctx context.Context, kb *KnowledgeBase) context.Context {
	return context.WithValue(ctx, keyKnowledgeBase, kb)
}

// AmbientKnowledgeBase returns the ambient knowledge base, if any.
func AmbientKnowledgeBase(ctx context.Context) (*KnowledgeBase, bool) {
	v, ok := ctx.Value(keyKnowledgeBase).(*KnowledgeBase)
	return v, ok
}

// WithVariableSource returns a context carrying a fresh-variable
// source reachable by any nested prover/listener invocation.
func WithVariableSource(ctx context.Context, src *term.VariableSource) context.Context {
	return context.WithValue(ctx, keyVariables, src)
}

// AmbientVariableSource returns the ambient variable source, if any.
func AmbientVariableSource(ctx context.Context) (*term.VariableSource, bool) {
	v, ok := ctx.Value(keyVariables).(*term.VariableSource)
	return v, ok
}

// WithAmbientConstantSource returns a context carrying a fresh-constant
// source reachable by any nested prover/listener invocation.
func WithAmbientConstantSource(ctx context.Context, src *term.ConstantSource) context.Context {
	return context.WithValue(ctx, keyConstants, src)
}

// AmbientConstantSource returns the ambient constant source, if any.
func AmbientConstantSource(ctx context.Context) (*term.ConstantSource, bool) {
	v, ok := ctx.Value(keyConstants).(*term.ConstantSource)
	return v, ok
}

// withTask marks ctx as running inside a scheduled task, so a nested
// synchronous Prove call can detect reentrancy.
func withTask(ctx context.Context) context.Context {
	return context.WithValue(ctx, keyInsideTask, true)
}

// insideTask reports whether ctx is running inside a scheduled task.
func insideTask(ctx context.Context) bool {
	v, _ := ctx.Value(keyInsideTask).(bool)
	return v
}
