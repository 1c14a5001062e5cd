package webtext_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/webtext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskState_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, webtext.TaskPending.Terminal())
	assert.False(t, webtext.TaskFetching.Terminal())
	assert.True(t, webtext.TaskCompleted.Terminal())
	assert.True(t, webtext.TaskFailed.Terminal())
}

func TestResult_ErrorString(t *testing.T) {
	t.Parallel()

	t.Run("empty on success", func(t *testing.T) {
		t.Parallel()

		r := &webtext.Result{URL: "https://example.com", Text: "hello"}

		assert.True(t, r.OK())
		assert.Equal(t, webtext.TaskCompleted, r.State())
		assert.Empty(t, r.ErrorString())
	})

	t.Run("uses application error message", func(t *testing.T) {
		t.Parallel()

		r := &webtext.Result{
			URL: "https://example.com",
			Err: webtext.Errorf(webtext.ESTATUS, "HTTP 500 for https://example.com"),
		}

		assert.False(t, r.OK())
		assert.Equal(t, webtext.TaskFailed, r.State())
		assert.Equal(t, "HTTP 500 for https://example.com", r.ErrorString())
	})

	t.Run("falls back to plain error text", func(t *testing.T) {
		t.Parallel()

		r := &webtext.Result{URL: "https://example.com", Err: errors.New("boom")}

		assert.Equal(t, "boom", r.ErrorString())
	})
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("success populates text and nulls error", func(t *testing.T) {
		t.Parallel()

		r := &webtext.Result{URL: "https://example.com", Title: "Example", Text: "hello"}

		data, err := json.Marshal(r)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, "https://example.com", fields["url"])
		assert.Equal(t, "hello", fields["text"])
		assert.Nil(t, fields["error"])
	})

	t.Run("failure populates error and code and nulls text", func(t *testing.T) {
		t.Parallel()

		r := &webtext.Result{
			URL: "https://example.com",
			Err: webtext.Errorf(webtext.ETIMEOUT, "request timed out after 10s"),
		}

		data, err := json.Marshal(r)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Nil(t, fields["text"])
		assert.Equal(t, "request timed out after 10s", fields["error"])
		assert.Equal(t, "timeout", fields["code"])
	})

	t.Run("decoding restores error code", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"url":"https://example.com","title":"","text":null,"error":"HTTP 404 for https://example.com","code":"status"}`)

		var r webtext.Result
		require.NoError(t, json.Unmarshal(data, &r))

		assert.False(t, r.OK())
		assert.Equal(t, webtext.ESTATUS, webtext.ErrorCode(r.Err))
		assert.Empty(t, r.Text)
	})
}

func TestBatch_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires results", func(t *testing.T) {
		t.Parallel()

		b := &webtext.Batch{}

		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(b.Validate()))
	})

	t.Run("requires URL on every result", func(t *testing.T) {
		t.Parallel()

		b := &webtext.Batch{Results: []*webtext.Result{{Text: "orphan"}}}

		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(b.Validate()))
	})

	t.Run("counts failures", func(t *testing.T) {
		t.Parallel()

		b := &webtext.Batch{Results: []*webtext.Result{
			{URL: "https://a.example.com", Text: "ok"},
			{URL: "https://b.example.com", Err: errors.New("down")},
		}}

		require.NoError(t, b.Validate())
		assert.Equal(t, 1, b.Failed())
	})
}
