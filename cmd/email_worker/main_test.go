package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devconnector-api/config"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/mailer"
	"github.com/oksasatya/devconnector-api/pkg/mailer/templates"
)

type recordingSender struct {
	err  error
	to   []string
	subj []string
}

func (s *recordingSender) Send(_ context.Context, to, subject, _, _ string) error {
	s.to = append(s.to, to)
	s.subj = append(s.subj, subject)
	return s.err
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle(t *testing.T) {
	logger := helpers.NewDiscardLogger()
	ctx := context.Background()

	s := &recordingSender{}
	got := handle(ctx, s, jobBody(t, mailer.EmailJob{
		To:       "ann@example.com",
		Template: "welcome",
		Data:     templates.EmailData{AppName: "DevConnector", Name: "Ann"},
	}), logger)
	assert.Equal(t, ack, got)
	assert.Equal(t, []string{"ann@example.com"}, s.to)
	assert.NotEmpty(t, s.subj[0])

	assert.Equal(t, drop, handle(ctx, s, []byte("{not json"), logger))
	assert.Equal(t, drop, handle(ctx, s, jobBody(t, mailer.EmailJob{To: "a@x.com", Template: "nope"}), logger))
	assert.Equal(t, drop, handle(ctx, s, jobBody(t, mailer.EmailJob{To: "a@x.com"}), logger))

	failing := &recordingSender{err: errors.New("mailgun down")}
	assert.Equal(t, requeue, handle(ctx, failing, jobBody(t, mailer.EmailJob{To: "a@x.com", Subject: "hi", Text: "hello"}), logger))
}

func TestCheckConfig(t *testing.T) {
	c := &config.Config{}
	assert.Error(t, checkConfig(c))

	c.RabbitMQURL, c.RabbitMQEmailQueue = "amqp://localhost", "emails"
	assert.Error(t, checkConfig(c))

	c.MailgunDomain, c.MailgunAPIKey, c.MailgunSender = "mg.example.com", "key", "no-reply@example.com"
	assert.NoError(t, checkConfig(c))
}
