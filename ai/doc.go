// Package ai defines the embedding abstractions used by the embedding
// worker. The openai subpackage talks to OpenAI-compatible services;
// the deterministic embedder here serves as an offline fallback and
// the mock subpackage provides test doubles.
package ai
