package llm

// WithChatCompleter exposes the unexported completer injection option to external tests.
var WithChatCompleter = withChatCompleter
