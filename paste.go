package vtengine

// Paste returns the bytes a host should write to the pty for a clipboard
// paste of text, wrapping it in the bracketed-paste markers (CSI 200~ /
// CSI 201~) when ModeBracketedPaste is enabled, otherwise returning text
// unmodified.
func (t *Terminal) Paste(text string) []byte {
	if !t.HasMode(ModeBracketedPaste) {
		return []byte(text)
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	out = append(out, "\x1b[201~"...)
	return out
}
