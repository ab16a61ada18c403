package ffmpeg

// splitTopLevel splits a stream descriptor on commas, ignoring commas
// nested inside parentheses or square brackets. FFmpeg stream lines use
// parenthesized annotations like `h264 (avc1 / 0x31637661)` and bracket
// groups like `[SAR 1:1 DAR 4:3]` whose inner commas are not field
// separators.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
