// Package deepseek adapts DeepSeek's chat API, which speaks the OpenAI wire
// format, to the astral adapter registry. Clients are go-openai clients
// pointed at DeepSeek's endpoint.
package deepseek
