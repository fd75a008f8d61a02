// Package models lists the Gemini and OpenAI models available to the
// configured API keys, grouped by what they can be used for: word, image,
// speech and transcription.
package models
