// Package ollama is a minimal client for the local Ollama HTTP API,
// covering the three endpoints the maintenance tools consume: /api/embed
// for text embeddings, /api/generate for vision analysis, and /api/tags
// for the pre-flight model probe. Every call carries an explicit timeout;
// the probe distinguishes an unreachable service from a missing model so
// callers can abort with an actionable message before mutating anything.
package ollama
