package transport

import (
	"testing"

	"github.com/nsyszr/flowpilot/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	m := &model.Event{
		CaseID:     "c1",
		Activity:   "click #a",
		Timestamp:  1700000000000,
		Attributes: model.Attributes{model.AttrTag: model.StringValue("a")},
	}

	data, err := Encode(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"caseId":"c1","activity":"click #a","ts":1700000000000,"attributes":{"tag":"a"}}`, string(data))

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.False(t, msg.IsCommand())
	assert.True(t, msg.Valid())
	assert.Equal(t, m.Timestamp, msg.Model().Timestamp)
	assert.Equal(t, "a", msg.Model().Attributes.Text(model.AttrTag))
}

func TestMessageValid(t *testing.T) {
	tests := []struct {
		data  string
		valid bool
	}{
		{`{"caseId":"c1","activity":"click #a","ts":1}`, true},
		{`{"activity":"click #a","ts":1}`, false},
		{`{"caseId":"c1","ts":1}`, false},
		{`{"caseId":"c1","activity":"click #a"}`, false},
		{`{"caseId":"c1","activity":"click #a","ts":0}`, false},
		{`{"caseId":"","activity":"click #a","ts":1}`, false},
		{`{"caseId":"c1","activity":"click #a","ts":8.64e15}`, true},
		{`{"caseId":"c1","activity":"click #a","ts":-8.64e15}`, true},
		{`{"caseId":"c1","activity":"click #a","ts":1e20}`, false},
		{`{"caseId":"c1","activity":"click #a","ts":-1e20}`, false},
	}

	for _, tt := range tests {
		msg, err := Decode([]byte(tt.data))
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.valid, msg.Valid(), tt.data)
	}
}

func TestDecodeCommand(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"flushEvents"}`))
	require.NoError(t, err)
	assert.True(t, msg.IsCommand())
	assert.Equal(t, CommandFlushEvents, msg.Command)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"caseId":"c1","activity":"a","ts":1,"attributes":{"x":[1]}}`))
	assert.Error(t, err)
}

func TestReplies(t *testing.T) {
	assert.True(t, Saved().OK())
	assert.True(t, Success("done").OK())
	assert.False(t, Failed(ErrMsgInvalidEvent).OK())
	assert.Equal(t, Reply{Status: StatusError, Error: "Invalid event data"}, Failed(ErrMsgInvalidEvent))

	r := <-Resolved(Saved())
	assert.Equal(t, StatusSaved, r.Status)
}

func TestStoredSubject(t *testing.T) {
	assert.Equal(t, "flowpilot.v1.events.stored.session_1_abc", StoredSubject("session_1_abc"))
	assert.Equal(t, "flowpilot.v1.events.stored.a_b_c_", StoredSubject("a.b c*"))
	assert.Equal(t, "flowpilot.v1.events.stored._", StoredSubject(""))
}
