package service

import (
	"fmt"
	"html"

	"budgetbite/config"
	"budgetbite/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg  *config.EmailConfig
	send func(m *gomail.Message) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// SendAlertEmail 把站内提醒同步发送到用户邮箱
func (s *EmailService) SendAlertEmail(toEmail, name string, alert *models.Alert) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 BUDGETBITE_EMAIL_ENABLED=true")
	}
	return s.sendEmail(toEmail, "[Budget Bite] "+alert.Title, s.generateAlertEmailBody(name, alert))
}

// NotifyAlert 发送提醒邮件，失败只记日志；未启用或用户无邮箱时跳过
func (s *EmailService) NotifyAlert(user *models.User, alert *models.Alert) {
	if !s.cfg.Enabled || user.Email == "" {
		return
	}
	if err := s.SendAlertEmail(user.Email, user.Name, alert); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":    user.ID,
			"alert_type": alert.AlertType,
		}).Warn("提醒邮件发送失败")
	}
}

// generateAlertEmailBody 生成提醒邮件内容
func (s *EmailService) generateAlertEmailBody(name string, alert *models.Alert) string {
	accent := "#f59e0b"
	if alert.AlertType == models.AlertGoalComplete {
		accent = "#10b981"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: %s; color: white; padding: 24px; text-align: center; }
        .content { padding: 32px 28px; color: #333; line-height: 1.8; }
        .footer { background: #f8f9fa; padding: 16px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>%s</h2></div>
        <div class="content">
            <p>Hi <strong>%s</strong>,</p>
            <p>%s</p>
        </div>
        <div class="footer">
            <p>Sent automatically by Budget Bite. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, accent, html.EscapeString(alert.Title), html.EscapeString(name), html.EscapeString(alert.Message))
}

// sendEmail 组装并发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
