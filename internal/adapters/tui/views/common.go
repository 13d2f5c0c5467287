package views

// ViewState is the size and status line shared by every view model
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// BodyHeight is the height left after reserved header and footer rows,
// never less than minRows.
func (s *ViewState) BodyHeight(reserved, minRows int) int {
	return max(s.Height-reserved, minRows)
}

// SetMessage sets the status line
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// SetError shows err on the status line, prefixed with what failed
func (s *ViewState) SetError(what string, err error) {
	if what == "" {
		s.SetMessage(err.Error(), true)
		return
	}
	s.SetMessage(what+": "+err.Error(), true)
}

// ClearMessage clears the status line
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}
