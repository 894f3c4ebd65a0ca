package extract

// extractText decodes the byte buffer as plain UTF-8 text, verbatim.
func extractText(data []byte) (string, error) {
	return string(data), nil
}
