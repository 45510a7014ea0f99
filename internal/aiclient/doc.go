// Package aiclient defines the two AI capabilities the core depends on —
// command translation/error analysis and text embedding — plus an
// HTTP-based implementation of both against an OpenAI-compatible
// completions endpoint and embeddings endpoint.
//
// The request-building shape (a single doRequest helper wrapping
// method/path/body into an authenticated JSON request) is grounded on
// llmproxy/client.go's doRequest, generalized from "call a fixed set of
// admin endpoints on an internal cost-tracking proxy" to "call a
// configurable provider's chat-completions and embeddings endpoints",
// since this spec talks to the AI provider directly rather than through a
// metering proxy.
package aiclient
