package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceInvokeReply(inner string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(inner))
	return `{"zato_env": {"result": "ZATO_OK", "cid": "K7"}, "zato_service_invoke_response": {"response": "` + encoded + `"}}`
}

func sentEnvelope(t *testing.T, session *fakeSession) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(session.lastCall(t).body, &env))
	return env
}

func boolPtr(b bool) *bool { return &b }

func TestAnyServiceInvoker_RequiresNameOrID(t *testing.T) {
	session := replying(200, "")
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Payload: map[string]any{"a": 1}})
	require.Error(t, err)
	assert.Nil(t, resp)

	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "Either name or id must be provided", usage.Message)
	assert.Equal(t, 0, session.callCount())
}

func TestAnyServiceInvoker_Envelope(t *testing.T) {
	session := replying(200, serviceInvokeReply(`{}`))
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	_, err := inv.Invoke(context.Background(), ServiceRequest{
		Name:    "my.service",
		Payload: map[string]any{"a": 1},
	})
	require.NoError(t, err)

	env := sentEnvelope(t, session)
	assert.Equal(t, "my.service", env["name"])
	assert.NotContains(t, env, "id")
	assert.Equal(t, "invoke", env["channel"])
	assert.Equal(t, "json", env["data_format"])
	assert.Nil(t, env["transport"])
	assert.Contains(t, env, "transport")
	assert.Equal(t, false, env["async"])
	assert.Equal(t, float64(15), env["expiration"])

	payload, err := base64.StdEncoding.DecodeString(env["payload"].(string))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(payload))
}

func TestAnyServiceInvoker_EnvelopeOverrides(t *testing.T) {
	session := replying(200, serviceInvokeReply(`{}`))
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	_, err := inv.InvokeAsync(context.Background(), ServiceRequest{
		ID:         42,
		Payload:    "raw text",
		RawPayload: true,
		Channel:    "amqp",
		DataFormat: "xml",
		Transport:  "plain_http",
		Expiration: 60,
		Headers:    map[string]string{"X-Trace": "t1"},
	})
	require.NoError(t, err)

	env := sentEnvelope(t, session)
	assert.Equal(t, float64(42), env["id"])
	assert.NotContains(t, env, "name")
	assert.Equal(t, "amqp", env["channel"])
	assert.Equal(t, "xml", env["data_format"])
	assert.Equal(t, "plain_http", env["transport"])
	assert.Equal(t, true, env["async"])
	assert.Equal(t, float64(60), env["expiration"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("raw text")), env["payload"])
	assert.Equal(t, "t1", session.lastCall(t).headers["X-Trace"])
}

func TestAnyServiceInvoker_NestedJSON(t *testing.T) {
	session := replying(200, serviceInvokeReply(`{"response": {"pong": "zato"}}`))
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "zato.ping"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.True(t, resp.HasData())
	assert.Equal(t, FormatServiceInvoke, resp.Format())
	assert.Equal(t, "K7", resp.CID())
	assert.Equal(t, map[string]any{"pong": "zato"}, resp.Data())
	assert.Equal(t, `{"response": {"pong": "zato"}}`, resp.InnerServiceResponse())
}

func TestAnyServiceInvoker_NestedList(t *testing.T) {
	session := replying(200, serviceInvokeReply(`[{"id": 1}, {"id": 2}]`))
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "zato.server.get-list"})
	require.NoError(t, err)

	assert.True(t, resp.OutputRepeated())
	var n int
	for range resp.Items() {
		n++
	}
	assert.Equal(t, 2, n)
}

func TestAnyServiceInvoker_NonJSONResponse(t *testing.T) {
	session := replying(200, serviceInvokeReply("hello"))
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.text.service"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "hello", resp.Data())
	assert.Equal(t, "hello", resp.Text())
}

func TestAnyServiceInvoker_EmptyResponse(t *testing.T) {
	session := replying(200, `{"zato_env": {"result": "ZATO_OK"}, "zato_service_invoke_response": {"response": ""}}`)
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.service"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.False(t, resp.HasData())
	assert.Nil(t, resp.Data())
}

func TestAnyServiceInvoker_BadBase64(t *testing.T) {
	session := replying(200, `{"zato_env": {"result": "ZATO_OK"}, "zato_service_invoke_response": {"response": "%%%"}}`)
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.service"})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Contains(t, resp.DetailsText(), "Could not decode service response")
}

func TestAnyServiceInvoker_ResponseNotAString(t *testing.T) {
	session := replying(200, `{"zato_env": {"result": "ZATO_OK"}, "zato_service_invoke_response": {"response": 5}}`)
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.service"})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.False(t, resp.HasData())
	assert.Equal(t, "Service response is not a base64 string: float64", resp.Details())
}

func TestAnyServiceInvoker_NullResponse(t *testing.T) {
	session := replying(200, `{"zato_env": {"result": "ZATO_OK"}, "zato_service_invoke_response": {"response": null}}`)
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.service"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.False(t, resp.HasData())
}

func TestAnyServiceInvoker_ServiceError(t *testing.T) {
	session := replying(500, `{"zato_env": {"result": "ZATO_ERROR", "details": "Traceback"}}`)
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	resp, err := inv.Invoke(context.Background(), ServiceRequest{Name: "my.service"})
	require.NoError(t, err)

	assert.False(t, resp.OK())
	assert.Equal(t, "Traceback", resp.Details())
}

func TestAnyServiceInvoker_OutputRepeated(t *testing.T) {
	tests := []struct {
		name     string
		req      ServiceRequest
		expected bool
	}{
		{"list suffix", ServiceRequest{Name: "zato.http-soap.get-list"}, true},
		{"upper case suffix", ServiceRequest{Name: "zato.GetList"}, true},
		{"no suffix", ServiceRequest{Name: "zato.ping"}, false},
		{"by id", ServiceRequest{ID: 7}, false},
		{"explicit override", ServiceRequest{Name: "zato.server.get-list", OutputRepeated: boolPtr(false)}, false},
		{"explicit for id", ServiceRequest{ID: 7, OutputRepeated: boolPtr(true)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := replying(200, serviceInvokeReply(`[]`))
			inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

			resp, err := inv.Invoke(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.OutputRepeated())
		})
	}
}

func TestAnyServiceInvoker_UnencodablePayload(t *testing.T) {
	session := replying(200, "")
	inv := NewAnyServiceInvoker("http://h", "/zato/admin/invoke", WithSession(session))

	_, err := inv.Invoke(context.Background(), ServiceRequest{Name: "x", Payload: make(chan int)})
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 0, session.callCount())
}
