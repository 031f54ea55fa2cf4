package models

// Validate checks the caption length.
func (t *Tag) Validate() error {
	return structErrors(t, nil)
}

func (t *Tag) String() string {
	return t.Caption
}
