package serializer

// Message serializes a simple acknowledgement.
func Message(message string) map[string]any {
	return map[string]any{
		"message": message,
	}
}
