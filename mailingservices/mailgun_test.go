package mailingservices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/carefront/config"
	"github.com/techagentng/carefront/models"
)

func TestNotifyReply(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the client sends url-encoded or multipart bodies depending on attachments
		_ = r.ParseMultipartForm(1 << 20)
		form = r.Form
		assert.True(t, strings.HasSuffix(r.URL.Path, "/mg.clinic.test/messages"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.clinic.test>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	mg := &Mailgun{}
	mg.Init(&config.Config{MgDomain: "mg.clinic.test", MailgunApiKey: "key-test"})
	mg.Client.SetAPIBase(srv.URL + "/v3")

	msg := &models.Message{FirstName: "Ann", Email: "ann@x.com", Body: "hi", Reply: "We can see you Monday"}
	require.NoError(t, mg.NotifyReply(context.Background(), msg))

	assert.Equal(t, []string{"ann@x.com"}, form["to"])
	assert.Equal(t, []string{"CareFront <no-reply@mg.clinic.test>"}, form["from"])
	assert.Contains(t, form.Get("text"), "We can see you Monday")
}

func TestNotifyReply_Uninitialised(t *testing.T) {
	err := (&Mailgun{}).NotifyReply(context.Background(), &models.Message{Email: "ann@x.com"})
	assert.Error(t, err)
}

func TestReplyBody(t *testing.T) {
	body := replyBody(&models.Message{Body: "line one\nline two", Reply: "ok"})
	assert.Contains(t, body, "Hello there,")
	assert.Contains(t, body, "> line one\n> line two")
}
