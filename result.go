package webtext

import (
	"encoding/json"
	"errors"
)

// TaskState is the progress of one URL through a batch.
type TaskState string

// TaskState constants. Pending and fetching are transient; completed and
// failed are terminal.
const (
	TaskPending   TaskState = "pending"
	TaskFetching  TaskState = "fetching"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Result is the outcome for one URL of a batch. Exactly one of Text and Err
// is meaningful: Err is nil on success, and Text is empty on failure.
type Result struct {
	URL   string
	Title string
	Text  string
	Hash  string
	Err   error
}

// OK reports whether the URL was fetched and converted.
func (r *Result) OK() bool {
	return r.Err == nil
}

// State returns the terminal state that produced r.
func (r *Result) State() TaskState {
	if r.Err != nil {
		return TaskFailed
	}
	return TaskCompleted
}

// ErrorString returns the failure description, or "" on success.
func (r *Result) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	var e *Error
	if errors.As(r.Err, &e) {
		return e.Message
	}
	return r.Err.Error()
}

type resultJSON struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Text  *string `json:"text"`
	Hash  string  `json:"hash,omitempty"`
	Error *string `json:"error"`
	Code  string  `json:"code,omitempty"`
}

// MarshalJSON encodes r with exactly one of "text" and "error" non-null.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{URL: r.URL, Title: r.Title, Hash: r.Hash}
	if r.Err != nil {
		msg := r.ErrorString()
		out.Error = &msg
		out.Code = ErrorCode(r.Err)
	} else {
		text := r.Text
		out.Text = &text
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON. A populated
// "error" field is restored as an *Error carrying the recorded code.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{URL: in.URL, Title: in.Title, Hash: in.Hash}
	if in.Error != nil {
		code := in.Code
		if code == "" {
			code = EINTERNAL
		}
		r.Err = &Error{Code: code, Message: *in.Error}
		return nil
	}
	if in.Text != nil {
		r.Text = *in.Text
	}
	return nil
}
