package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const eventQueueName = "notification_queue"

// publishEvent 在业务状态落库之后把领域事件投递到消息队列
// 投递失败只记日志，绝不回滚已经提交的业务状态
func (h *Handler) publishEvent(eventType string, to string, data any) {
	body, err := json.Marshal(domain.EventMessage{
		Type: eventType,
		To:   to,
		Data: data,
	})
	if err != nil {
		slog.Error("序列化领域事件失败", "type", eventType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	err = h.eventChannel.PublishWithContext(ctx, "", eventQueueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		slog.Error("投递领域事件失败", "type", eventType, "to", to, "error", err)
	}
}
