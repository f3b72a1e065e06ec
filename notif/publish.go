package notif

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/klauspost/compress/zstd"
)

// Event is what the push fan-out worker receives for every notification.
type Event struct {
	NotificationID string    `json:"notification_id"`
	RecipientUUID  string    `json:"recipient_uuid"`
	Kind           Kind      `json:"kind"`
	Message        string    `json:"message"`
	SubjectID      *string   `json:"subject_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func eventOf(n Notification) Event {
	ev := Event{
		NotificationID: n.ID.String(),
		RecipientUUID:  n.RecipientUUID.String(),
		Kind:           n.Kind,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	if n.SubjectID != nil {
		s := n.SubjectID.String()
		ev.SubjectID = &s
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// EncodeEvent marshals ev to JSON, compresses it with zstd and encodes the
// result as base64 so that it fits an SQS message body.
func EncodeEvent(ev Event) (string, error) {
	jsonEv, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	zstdEncoder, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer zstdEncoder.Close()

	compressed := zstdEncoder.EncodeAll(jsonEv, make([]byte, 0, len(jsonEv)))
	return base64.StdEncoding.EncodeToString(compressed), nil
}

func DecodeEvent(body string) (Event, error) {
	compressed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Event{}, fmt.Errorf("failed to decode base64: %w", err)
	}

	zstdDecoder, err := zstd.NewReader(nil)
	if err != nil {
		return Event{}, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer zstdDecoder.Close()

	jsonEv, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return Event{}, fmt.Errorf("failed to decompress event: %w", err)
	}

	var ev Event
	if err := json.Unmarshal(jsonEv, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return ev, nil
}

type SqsPublisher struct {
	client   *sqs.Client
	queueUrl string
}

func NewSqsPublisher(client *sqs.Client, queueUrl string) *SqsPublisher {
	return &SqsPublisher{client: client, queueUrl: queueUrl}
}

func (p *SqsPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueUrl),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to notification queue: %w", err)
	}
	return nil
}

// Receive long-polls the queue once and returns the decoded events along
// with their receipt handles. Used by the admin CLI to inspect the queue.
func (p *SqsPublisher) Receive(ctx context.Context, max int32) ([]Event, []string, error) {
	output, err := p.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(p.queueUrl),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	var events []Event
	var handles []string
	for _, msg := range output.Messages {
		if msg.Body == nil || msg.ReceiptHandle == nil {
			continue
		}
		ev, err := DecodeEvent(*msg.Body)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, ev)
		handles = append(handles, *msg.ReceiptHandle)
	}
	return events, handles, nil
}
