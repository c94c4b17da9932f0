// Package models talks to the model servers that answer translation queries.
// It provides an Ollama client (through Ollama's OpenAI-compatible API), a
// Gemini client, and the selection of which installed model to use.
package models
