package openai

// repairJSON restores the opening quote small models drop from object keys,
// turning `{word": "x"}` into `{"word": "x"}`. Anything else is copied
// through unchanged.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t' || in[i] == '\r') {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		start := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_') {
			i++
		}
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[start:i]...)
	}
	return string(out)
}
