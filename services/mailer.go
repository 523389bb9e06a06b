//go:generate go run go.uber.org/mock/mockgen -source=mailer.go -destination=../mocks/mock_mailer.go -package=mocks
package services

import "log/slog"

// IMailer delivers password-reset codes to users.
type IMailer interface {
	SendResetCode(email, code string) error
}

// LogMailer writes reset codes to the log instead of sending an email.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) IMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendResetCode(email, code string) error {
	m.log.Info("Password reset code issued", "email", email, "reset_code", code)
	return nil
}
