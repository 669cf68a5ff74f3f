package service

import (
	"errors"
	"strings"
	"testing"

	"budgetbite/config"
	"budgetbite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestEmailService(enabled bool) (*EmailService, *[]*gomail.Message) {
	s := NewEmailService(&config.EmailConfig{Enabled: enabled, Username: "bot@budgetbite.app", From: "Budget Bite"})
	sent := &[]*gomail.Message{}
	s.send = func(m *gomail.Message) error {
		*sent = append(*sent, m)
		return nil
	}
	return s, sent
}

func overspendAlert() *models.Alert {
	return &models.Alert{
		AlertType: models.AlertOverspend,
		Title:     "⚠️ Daily Limit Exceeded!",
		Message:   "You've spent ₹450 today. Your daily limit is ₹300.",
	}
}

func TestGenerateAlertEmailBody(t *testing.T) {
	s, _ := newTestEmailService(true)
	body := s.generateAlertEmailBody("Riya <script>", overspendAlert())
	assert.Contains(t, body, "Daily Limit Exceeded")
	assert.Contains(t, body, "₹450 today")
	assert.Contains(t, body, "Riya &lt;script&gt;")
	assert.Contains(t, body, "#f59e0b")

	goal := &models.Alert{AlertType: models.AlertGoalComplete, Title: "🎉 Goal Completed!"}
	assert.Contains(t, s.generateAlertEmailBody("Riya", goal), "#10b981")
}

func TestSendAlertEmail_Disabled(t *testing.T) {
	s, sent := newTestEmailService(false)
	err := s.SendAlertEmail("riya@example.com", "Riya", overspendAlert())
	require.Error(t, err)
	assert.Empty(t, *sent)
}

func TestNotifyAlert(t *testing.T) {
	s, sent := newTestEmailService(true)

	s.NotifyAlert(&models.User{ID: 1, Name: "Riya", Email: "riya@example.com"}, overspendAlert())
	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"riya@example.com"}, (*sent)[0].GetHeader("To"))
	assert.True(t, strings.HasPrefix((*sent)[0].GetHeader("Subject")[0], "[Budget Bite]"))

	// 无邮箱跳过
	s.NotifyAlert(&models.User{ID: 2, Name: "NoMail"}, overspendAlert())
	assert.Len(t, *sent, 1)
}

func TestNotifyAlert_SendFailureIsSwallowed(t *testing.T) {
	s, _ := newTestEmailService(true)
	s.send = func(m *gomail.Message) error { return errors.New("smtp down") }

	assert.NotPanics(t, func() {
		s.NotifyAlert(&models.User{ID: 1, Email: "riya@example.com"}, overspendAlert())
	})
	assert.Error(t, s.SendAlertEmail("riya@example.com", "Riya", overspendAlert()))
}
