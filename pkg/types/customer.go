package types

import "strings"

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Complete reports whether name, email and phone are all non-blank.
func (c Customer) Complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Email) != "" &&
		strings.TrimSpace(c.Phone) != ""
}

type Address struct {
	Line  string `json:"line"`
	City  string `json:"city"`
	State string `json:"state"`
}

// String joins the non-blank parts with ", ".
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Line, a.City, a.State} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}
