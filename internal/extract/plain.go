package extract

// extractPlain returns content as-is; Parse sanitizes the encoding.
func extractPlain(content []byte) (string, error) {
	return string(content), nil
}
