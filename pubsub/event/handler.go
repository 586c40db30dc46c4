package event

import (
	"context"

	"pousada/entity"
)

// MailerService delivers guest and innkeeper notification e-mails.
type MailerService interface {
	Send(ctx context.Context, mail entity.Mail) error
}

type Handler struct {
	mailerService  MailerService
	innkeeperEmail string
}

func NewHandler(mailerService MailerService, innkeeperEmail string) Handler {
	if mailerService == nil {
		panic("missing mailerService")
	}
	if innkeeperEmail == "" {
		panic("missing innkeeperEmail")
	}

	return Handler{
		mailerService:  mailerService,
		innkeeperEmail: innkeeperEmail,
	}
}
