package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTwilioBaseURL is the public Twilio REST API host.
	DefaultTwilioBaseURL = "https://api.twilio.com"

	defaultTwilioTimeout = 10 * time.Second
	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 64 << 10
)

// twilioResponse covers both the success and the error shape of the Messages resource.
type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TwilioClient sends messages through the Twilio Messages API.
type TwilioClient struct {
	accountSID  string
	authToken   string
	phoneNumber string
	baseURL     string
	client      *http.Client
	logger      zerolog.Logger
}

// NewTwilioClient creates a new instance of TwilioClient.
// Credentials are not checked here; Validate reports what is missing.
func NewTwilioClient(cfg config.TwilioConfig, logger *zerolog.Logger) *TwilioClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultTwilioBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTwilioTimeout
	}
	return &TwilioClient{
		accountSID:  cfg.AccountSID,
		authToken:   cfg.AuthToken,
		phoneNumber: cfg.PhoneNumber,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.With().Str("component", "twilio_client").Logger(),
	}
}

// Validate implements the Sender interface.
func (c *TwilioClient) Validate() error {
	cfg := config.TwilioConfig{AccountSID: c.accountSID, AuthToken: c.authToken, PhoneNumber: c.phoneNumber}
	if missing := cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Send implements the Sender interface for Twilio.
func (c *TwilioClient) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	form := url.Values{}
	form.Set("From", c.phoneNumber)
	form.Set("To", msg.To)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("to", msg.To).Dur("duration", time.Since(start)).Msg("http error sending sms")
		return nil, fmt.Errorf("twilio: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("twilio: failed to read response: %w", err)
	}

	var payload twilioResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		perr := &ProviderError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil {
			perr.Code = payload.Code
			if payload.Message != "" {
				perr.Message = payload.Message
			}
		}
		c.logger.Warn().
			Str("to", msg.To).
			Int("status", resp.StatusCode).
			Int("code", perr.Code).
			Dur("duration", time.Since(start)).
			Msg("twilio rejected sms")
		return nil, perr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("twilio: failed to decode response: %w", decodeErr)
	}
	if payload.SID == "" {
		return nil, errors.New("twilio: response carried no message sid")
	}

	c.logger.Info().
		Str("to", msg.To).
		Str("sid", payload.SID).
		Str("status", payload.Status).
		Dur("duration", time.Since(start)).
		Msg("sms accepted by twilio")

	return &Receipt{SID: payload.SID, Status: payload.Status}, nil
}
