package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var textPipeline = Pipeline{
	stripControl,
	TrimAndNormalize,
}

func stripControl(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r >= 0x20 && r != 0x7f {
			out = append(out, r)
		}
	}
	return string(out)
}

// SanitizeText cleans free-form text such as names, service titles and descriptions.
func SanitizeText(input string) string {
	return textPipeline.Apply(input)
}

func SanitizePhone(phone string) string {
	return NormalizePhone(phone)
}

func SanitizeEmail(email string) string {
	return NormalizeEmail(email)
}

// SanitizeDetails returns exactly n cleaned entries.
func SanitizeDetails(details []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(details); i++ {
		out[i] = SanitizeText(details[i])
	}
	return out
}
