// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with completion backends inside cadkg.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Surface transport failures as a typed error so callers can retry
//   - Facilitate lightweight mocking for tests (MockClient, ClientFunc)
//
// Providers (OpenAI-compatible endpoints, Anthropic) implement the Client
// interface from this package so the swarm engine remains decoupled from
// vendor SDKs. Model tier selection (cheap/fast for specialists, larger for
// managers) is a construction-time concern: build one Client per tier.
package model
