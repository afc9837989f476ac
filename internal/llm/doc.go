// Package llm provides language model clients for the financial advisor.
// It supports the Gemini generateContent API and OpenAI-compatible chat
// completion endpoints behind a single Client interface. Calls are made
// once: there is no retry, and the only deadline is the caller's context.
package llm
