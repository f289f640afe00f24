package classroom

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/trezcool/lophoc/core"
)

const urgentNotificationTemplate = "urgent_notification"

type urgentNotificationData struct {
	StudentName string
	Title       string
	Content     string
	CreatedBy   string
	CreatedDate string
}

// mailParents sends n to the parent of every student with a parent email.
func (svc *Service) mailParents(ctx context.Context, n Notification) {
	rows, err := svc.tables.Select(ctx, core.From(core.TableStudents).
		Select("full_name", "parent_email").
		OrderBy(core.Asc("id")))
	if err != nil {
		svc.logger.Error(fmt.Sprintf("listing parents for urgent notification %q: %v", n.Title, err), err)
		return
	}

	msgs := make([]*core.EmailMessage, 0, len(rows))
	for _, r := range rows {
		addr, err := mail.ParseAddress(r.String("parent_email"))
		if err != nil {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{*addr},
			Subject:      n.Title,
			TemplateName: urgentNotificationTemplate,
			TemplateData: urgentNotificationData{
				StudentName: r.String("full_name"),
				Title:       n.Title,
				Content:     n.Content,
				CreatedBy:   n.CreatedBy,
				CreatedDate: n.CreatedDate,
			},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
}
