package logging

// Logger writes one structured entry per call; fields become top-level keys.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}
