package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"path/filepath"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/queue"
	"github.com/wneessen/go-mail"
)

var errUnknownMailType = errors.New("不支持的邮件类型")

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeWelcome: {
		file:    "welcome_email.html",
		subject: "任务排序助手 - 注册成功",
	},
	domain.MailTypeSequencingDone: {
		file:    "sequencing_done_email.html",
		subject: "任务排序助手 - 排序完成",
	},
}

// sender 由 *mail.Client 实现
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type mailer struct {
	sender      sender
	from        string
	templateDir string
}

// build 根据邮件类型渲染模板并构建邮件
func (m *mailer) build(mailMessage domain.MailMessage) (*mail.Msg, error) {
	mt, ok := mailTemplates[mailMessage.Type]
	if !ok {
		return nil, errUnknownMailType
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(mailMessage.To); err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFiles(filepath.Join(m.templateDir, mt.file))
	if err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, err
	}
	msg.Subject(mt.subject)

	return msg, nil
}

// handle 发送一条邮件消息，只有发送失败时才重新入队
func (m *mailer) handle(ctx context.Context, delivery amqp.Delivery) queue.Decision {
	slog.Info("收到消息", slog.String("message", string(delivery.Body)))

	mailMessage := domain.MailMessage{}
	if err := json.Unmarshal(delivery.Body, &mailMessage); err != nil {
		slog.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
		return queue.Drop
	}

	msg, err := m.build(mailMessage)
	if err != nil {
		slog.Error("无法构建邮件", slog.String("type", mailMessage.Type), slog.String("error", err.Error()))
		return queue.Drop
	}

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("邮件发送失败", slog.String("error", err.Error()))
		return queue.Requeue
	}

	return queue.Ack
}
