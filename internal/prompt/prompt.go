package prompt

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
)

//go:embed templates/*.txt
var templates embed.FS

// Template identifiers. The set is closed; Render rejects anything else.
const (
	Interviewer       = "interviewer"
	AnswerGenerator   = "answer_generator"
	FollowupGenerator = "followup_generator"
)

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes the named values into the identified template. Every
// placeholder in the template must be supplied; a missing key is a
// configuration error, not a silent blank.
func Render(id string, values map[string]string) (string, error) {
	raw, err := templates.ReadFile("templates/" + id + ".txt")
	if err != nil {
		return "", fmt.Errorf("unknown prompt template %q", id)
	}

	text := string(raw)
	var missing []string
	rendered := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := m[1 : len(m)-1]
		val, ok := values[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return val
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("prompt template %q missing values for: %s", id, strings.Join(missing, ", "))
	}
	return strings.TrimSpace(rendered), nil
}
