package gateway

import (
	"context"
	"sync"

	"pousada/entity"
)

type MailerMock struct {
	mock sync.Mutex

	SentMails []entity.Mail
}

func (c *MailerMock) Send(ctx context.Context, mail entity.Mail) error {
	c.mock.Lock()
	defer c.mock.Unlock()

	c.SentMails = append(c.SentMails, mail)

	return nil
}

func (c *MailerMock) Sent() []entity.Mail {
	c.mock.Lock()
	defer c.mock.Unlock()

	return append([]entity.Mail(nil), c.SentMails...)
}
