package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lophoc/core"
	testutil "github.com/trezcool/lophoc/tests"
)

func TestParseEmailTemplates(t *testing.T) {
	logger := new(testutil.Logger)
	core.ParseEmailTemplates(logger)
	assert.Zero(t, logger.Count("ERROR"), "logged: %v", logger.Messages)

	msg := &core.EmailMessage{
		Subject:      "Nghỉ học",
		TemplateName: "urgent_notification",
		TemplateData: map[string]string{
			"StudentName": "Nguyễn Văn An",
			"Title":       "Nghỉ học",
			"Content":     "Lớp nghỉ học ngày mai.",
			"CreatedBy":   "Cô Lan",
			"CreatedDate": "5/9/2024",
		},
	}
	require.NoError(t, msg.Render("Lop Hoc"))

	// both layouts are embedded and wrap the content
	assert.Contains(t, msg.TextContent, "Kính gửi quý phụ huynh em Nguyễn Văn An")
	assert.Contains(t, msg.TextContent, "--\nLop Hoc")
	assert.Contains(t, msg.HTMLContent, "<strong>Nguyễn Văn An</strong>")
	assert.Contains(t, msg.HTMLContent, "<title>Lop Hoc</title>")
}

func TestEmailMessage_Render_UnknownTemplate(t *testing.T) {
	core.ParseEmailTemplates(new(testutil.Logger))

	msg := &core.EmailMessage{TemplateName: "nope"}
	assert.Error(t, msg.Render("Lop Hoc"))
}
