package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/jx"
)

// errorBodyLimit caps how much of an error response is read for its message.
const errorBodyLimit = 64 << 10

// Error is a non-2xx backend response. Message carries the server-supplied
// text from the {"message": ...} error body when one was present.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the server-supplied text, fit to show the user as-is.
func (e *Error) UserMessage() string {
	return e.Message
}

// newError builds an Error from a failed response, best-effort extracting the
// message field. Unparseable bodies just leave Message empty.
func newError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return apiErr
	}

	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		msg, err := d.Str()
		if err != nil {
			return err
		}
		apiErr.Message = msg
		return nil
	})
	return apiErr
}
