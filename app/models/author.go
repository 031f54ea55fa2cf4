package models

import "strings"

// Validate checks the author's name and email.
func (a *Author) Validate() error {
	return structErrors(a, nil)
}

// FullName joins first and last name.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Author) String() string {
	return a.FullName()
}
