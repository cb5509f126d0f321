package widget

import (
	"fmt"
	"net/url"
	"strings"
)

// URLScheme is the deep-link scheme the app registers.
const URLScheme = "taskdock"

// Destination is a screen a widget tap can open.
type Destination string

const (
	DestToday    Destination = "today"
	DestPriority Destination = "priority"
	DestNewTask  Destination = "newTask"
)

// URL returns the deep link for d.
func (d Destination) URL() string {
	return URLScheme + "://" + string(d)
}

// ResolveDestination parses a widget deep link such as taskdock://today.
func ResolveDestination(raw string) (Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing deep link %q: %w", raw, err)
	}
	if !strings.EqualFold(u.Scheme, URLScheme) {
		return "", fmt.Errorf("deep link %q: unknown scheme %q", raw, u.Scheme)
	}

	target := u.Host
	if target == "" {
		target = strings.Trim(u.Opaque+u.Path, "/")
	}
	switch d := Destination(target); d {
	case DestToday, DestPriority, DestNewTask:
		return d, nil
	default:
		return "", fmt.Errorf("deep link %q: unknown destination %q", raw, target)
	}
}
