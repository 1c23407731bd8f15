package vocabulary

import "fmt"

// LoadError reports a vocabulary file that exists but cannot be used.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load vocabulary %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load vocabulary %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// EntryError reports a skill entry that breaks the vocabulary rules.
type EntryError struct {
	Set    string
	Index  int
	Value  string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s[%d] %q: %s", e.Set, e.Index, e.Value, e.Reason)
}
