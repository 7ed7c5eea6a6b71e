package milestone

import "strings"

// Prefixes of note bodies written by the system rather than the patient.
const (
	NotePrefixAutoGenerated = "Auto-generated"
	NotePrefixTemplate      = "Created from cycle template"
	NotePrefixPromoted      = "Promoted from template"
)

var autoNotePrefixes = []string{NotePrefixAutoGenerated, NotePrefixTemplate, NotePrefixPromoted}

// IsAutoGeneratedNote reports whether the note was written by the system.
func IsAutoGeneratedNote(note string) bool {
	n := strings.TrimSpace(note)
	for _, p := range autoNotePrefixes {
		if strings.HasPrefix(n, p) {
			return true
		}
	}
	return false
}

// EditableNotes returns the notes a patient should see in an edit view,
// hiding system-generated bodies.
func (m *Milestone) EditableNotes() string {
	if !m.Notes.Valid || IsAutoGeneratedNote(m.Notes.String) {
		return ""
	}
	return m.Notes.String
}
