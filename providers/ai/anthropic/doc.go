// Package anthropic adapts Anthropic's Messages API to the astral adapter
// registry.
//
// [ConvertLLMMessages] turns a provider-agnostic conversation into a
// [MessagesPayload]: instructions are hoisted into the top-level system
// field, consecutive tool results and user messages are merged into one user
// turn, and tool arguments are repaired into valid JSON. [NewClient] and
// [NewAsyncClient] build the connection settings a request is sent with.
package anthropic
