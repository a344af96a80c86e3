package colors

import "github.com/fatih/color"

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
)

// Status colors an http status code the way the request log shows it
func Status(status int) string {
	switch {
	case status >= 500:
		return Red(status)
	case status >= 400:
		return Yellow(status)
	}
	return Green(status)
}
