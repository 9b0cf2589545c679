package parts

import (
	"fmt"
	"strings"
)

// Document key layout. Components and pending ambiguous rows live in
// per-user, per-project collections; the LPN counter is a single global
// document shared by everyone.
const counterKey = "counters/lpn"

func componentPrefix(user, project string) string {
	return "users/" + user + "/projects/" + project + "/components/"
}

func componentKey(user, project, id string) string {
	return componentPrefix(user, project) + id
}

func pendingPrefix(user, project string) string {
	return "users/" + user + "/projects/" + project + "/pending/"
}

func pendingKey(user, project, id string) string {
	return pendingPrefix(user, project) + id
}

// validateName rejects identifiers that would break the hierarchical key
// scheme.
func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s must not be empty", kind)
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%s %q must not contain '/'", kind, name)
	}
	return nil
}
