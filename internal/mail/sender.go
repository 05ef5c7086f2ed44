package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/domain"
)

// Message is one transactional email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

const (
	maxAttempts   = 3
	backoffBase   = 500 * time.Millisecond
	defaultSendTO = 10 * time.Second
)

// PlunkSender talks to Plunk's REST send endpoint.
// 4xx responses fail immediately; 5xx and transport errors are retried with
// exponential backoff before the last error is surfaced.
type PlunkSender struct {
	apiURL string
	token  string
	client *http.Client
	log    *zap.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

func NewPlunkSender(apiURL, token string, log *zap.Logger) *PlunkSender {
	return &PlunkSender{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: defaultSendTO},
		log:    log.With(zap.String("service", "mail")),
		sleep:  time.Sleep,
	}
}

type plunkResponse struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	Success   bool   `json:"success"`
}

func (s *PlunkSender) Send(ctx context.Context, msg Message) (string, error) {
	if s.token == "" {
		return "", domain.ConfigurationError{Setting: "PLUNK_API_TOKEN"}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			s.sleep(backoffBase << (attempt - 2))
		}

		messageID, err := s.attempt(ctx, payload)
		if err == nil {
			if attempt > 1 {
				s.log.Info("Email delivered after retry",
					zap.Int("attempt", attempt),
					zap.String("to", msg.To),
				)
			}
			return messageID, nil
		}

		var delivery domain.DeliveryError
		if errors.As(err, &delivery) && !delivery.Retryable {
			// Provider rejected the message; retrying cannot help
			return "", err
		}

		s.log.Warn("Email attempt failed",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.String("to", msg.To),
		)
		lastErr = err
	}

	return "", lastErr
}

func (s *PlunkSender) attempt(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", domain.DeliveryError{Retryable: false, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", domain.DeliveryError{Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var parsed plunkResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			// Delivered even if the body is odd; id is best-effort
			return "", nil
		}
		if parsed.ID != "" {
			return parsed.ID, nil
		}
		return parsed.MessageID, nil
	case resp.StatusCode >= 500:
		return "", domain.DeliveryError{
			StatusCode: resp.StatusCode,
			Retryable:  true,
			Err:        fmt.Errorf("plunk api error: %d %s", resp.StatusCode, string(body)),
		}
	default:
		return "", domain.DeliveryError{
			StatusCode: resp.StatusCode,
			Retryable:  false,
			Err:        fmt.Errorf("plunk api error: %d %s", resp.StatusCode, string(body)),
		}
	}
}

// LogSender is the development fallback when no Plunk token is configured:
// messages are logged, never sent.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("service", "mail-log"))}
}

func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	s.log.Info("Email (not sent, development mode)",
		zap.String("to", msg.To),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
	)
	return "dev-" + time.Now().UTC().Format("20060102150405"), nil
}
