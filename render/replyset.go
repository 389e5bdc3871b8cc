package render

import "github.com/CrestNiraj12/molterm/domain"

// ReplySet holds the ids of comments whose reply form is open. The zero
// value is an empty, usable set.
type ReplySet struct {
	open map[domain.ID]struct{}
}

// Toggle flips the form for id and reports whether it is now open.
func (s *ReplySet) Toggle(id domain.ID) bool {
	if s.open == nil {
		s.open = make(map[domain.ID]struct{})
	}
	if _, ok := s.open[id]; ok {
		delete(s.open, id)
		return false
	}
	s.open[id] = struct{}{}
	return true
}

// Close hides the form for id.
func (s *ReplySet) Close(id domain.ID) {
	delete(s.open, id)
}

// IsOpen reports whether the form for id is shown.
func (s ReplySet) IsOpen(id domain.ID) bool {
	_, ok := s.open[id]
	return ok
}

// Len is the number of open forms.
func (s ReplySet) Len() int { return len(s.open) }

// Clear closes every form.
func (s *ReplySet) Clear() {
	s.open = nil
}
