package fraud

import "regexp"

// emailPattern requires some allowed characters before the @, a host
// label, a literal dot and a trailing domain part.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidEmail reports whether s passes the syntactic email check.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
