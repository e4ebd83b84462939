package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/burnnote/burner/internal/notes"
)

// terminalDisplay renders lifecycle events to the terminal. It is the
// display collaborator of the note core: the core supplies the data, the
// terminal decides how it looks.
type terminalDisplay struct {
	w io.Writer
}

func (d *terminalDisplay) ShowPlaintext(plaintext []byte) {
	fmt.Fprintf(d.w, "\n----- note -----\n%s\n----------------\n", plaintext)
	fmt.Fprintln(d.w, "This note has now been destroyed and cannot be viewed again.")
}

func (d *terminalDisplay) ShowFailure(f notes.Failure) {
	switch f {
	case notes.FailureExpired:
		fmt.Fprintln(d.w, "This note has expired.")
	case notes.FailureWrongSecret:
		fmt.Fprintln(d.w, "Wrong password or corrupted note.")
	case notes.FailureNetwork:
		fmt.Fprintln(d.w, "The note server is unreachable. Try again later.")
	default:
		fmt.Fprintln(d.w, "This link is not valid, or the note was already viewed.")
	}
}

func (d *terminalDisplay) ShowExpiry(at time.Time) {
	remaining := time.Until(at).Truncate(time.Second)
	if remaining > 0 {
		fmt.Fprintf(d.w, "Note expires at %s (in %s).\n", at.Format(time.RFC1123), remaining)
	}
}
