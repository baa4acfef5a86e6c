package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/model"
)

const (
	WebhookRequestOriginHeader = "WebHook-Request-Origin"
	WebhookAllowedOriginHeader = "WebHook-Allowed-Origin"
	WebhookAllowedRateHeader   = "WebHook-Allowed-Rate"
)

var (
	errEmptyBody = errors.New("empty body")
	errNotJSON   = errors.New("body is not valid JSON")
)

type Dispatcher interface {
	Dispatch(ctx context.Context, envelope *model.EventEnvelope) error
}

// WebhookHandler is the push-delivery endpoint the event substrate posts to.
// It answers the subscription validation handshake inline and hands everything
// else to the dispatcher.
type WebhookHandler struct {
	BaseHandler

	log         *zap.Logger
	allowedRate string
	dispatcher  Dispatcher
}

func NewWebhookHandler(log *zap.Logger, allowedRate string, dispatcher Dispatcher) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		allowedRate: allowedRate,
		dispatcher:  dispatcher,
	}
}

// probe is the minimal slice of an incoming event needed to route it. Parsing
// stays lenient on purpose: the substrate's validation handshake does not
// carry a full envelope.
type probe struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// Receive
// @Summary Event delivery endpoint for the push substrate.
// @Description Accepts a JSON array of events or a bare event object. Answers subscription validation inline.
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} ResponseWithMessage "Accepted"
// @Failure 400 {object} ResponseWithMessage "Malformed event"
// @Failure 500 {object} ResponseWithMessage "Processing failed, delivery will be retried"
// @Router /events [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "unreadable body",
		})

		return
	}

	events, err := splitEvents(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	for _, raw := range events {
		var p probe
		if err := json.Unmarshal(raw, &p); err != nil || p.EventType == "" {
			c.JSON(http.StatusBadRequest, ResponseWithMessage{
				Status:  StatusErr,
				Message: "event without eventType",
			})

			return
		}

		if model.IsValidationEvent(p.EventType) {
			h.validate(c, p.Data)

			return
		}

		var envelope model.EventEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			c.JSON(http.StatusBadRequest, ResponseWithMessage{
				Status:  StatusErr,
				Message: "malformed event envelope",
			})

			return
		}

		// lenient path: a minimal {eventType, data} object (manual/test
		// pushes) gets a synthesized envelope
		if envelope.EventID == uuid.Nil {
			if err := synthesizeEnvelope(&envelope); err != nil {
				c.JSON(http.StatusBadRequest, ResponseWithMessage{
					Status:  StatusErr,
					Message: err.Error(),
				})

				return
			}

			h.log.Info("Synthesized envelope for minimal event",
				zap.String("event_id", envelope.EventID.String()),
				zap.String("event_type", envelope.EventType),
			)
		}

		if err := h.dispatcher.Dispatch(ctx, &envelope); err != nil {
			h.log.Error("Failed to dispatch event",
				zap.String("event_id", envelope.EventID.String()),
				zap.Error(err),
			)

			// Non-2xx makes the substrate redeliver; the inbox absorbs the
			// duplicate once processing succeeds.
			c.JSON(http.StatusInternalServerError, ResponseWithMessage{
				Status:  StatusErr,
				Message: "event processing failed",
			})

			return
		}
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "accepted",
	})
}

// Preflight
// @Summary Abuse-protection handshake for the push substrate.
// @Description Echoes the requesting origin and advertises the accepted delivery rate.
// @Tags Webhook
// @Success 200 "Origin allowed"
// @Router /events [options]
func (h *WebhookHandler) Preflight(c *gin.Context) {
	origin := c.GetHeader(WebhookRequestOriginHeader)
	if origin != "" {
		c.Header(WebhookAllowedOriginHeader, origin)
	}

	if h.allowedRate != "" {
		c.Header(WebhookAllowedRateHeader, h.allowedRate)
	}

	c.Status(http.StatusOK)
}

func (h *WebhookHandler) validate(c *gin.Context, data json.RawMessage) {
	var v model.ValidationData
	if err := json.Unmarshal(data, &v); err != nil || v.ValidationCode == "" {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "validation event without validationCode",
		})

		return
	}

	h.log.Info("Answered subscription validation handshake")

	c.JSON(http.StatusOK, model.ValidationResponse{
		ValidationResponse: v.ValidationCode,
	})
}

// synthesizeEnvelope fills in the fields a minimal event lacks. The subject is
// derived from the event type's kind and the id inside the payload when the
// push itself did not carry one.
func synthesizeEnvelope(envelope *model.EventEnvelope) error {
	envelope.EventID = uuid.New()

	if envelope.SchemaVersion == 0 {
		envelope.SchemaVersion = model.SchemaVersion
	}

	if envelope.OccurredAt.IsZero() {
		envelope.OccurredAt = time.Now().UTC()
	}

	if envelope.CorrelationID == "" {
		envelope.CorrelationID = envelope.EventID.String()
	}

	if envelope.Subject == "" {
		kind, ok := kindForEvent(envelope.EventType)
		if !ok {
			return errors.New("event without subject")
		}

		var fields model.IdentityFields
		if err := json.Unmarshal(envelope.Data, &fields); err != nil || fields.ID == uuid.Nil {
			return errors.New("event without subject")
		}

		envelope.Subject = model.Subject(kind, fields.ID)
	}

	return nil
}

func kindForEvent(eventType string) (string, bool) {
	switch {
	case strings.Contains(eventType, "Prospect"):
		return model.KindProspect, true
	case strings.Contains(eventType, "Student"):
		return model.KindStudent, true
	case strings.Contains(eventType, "Instructor"):
		return model.KindInstructor, true
	default:
		return "", false
	}
}

// splitEvents accepts either a JSON array of events or one bare object.
func splitEvents(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}

	if trimmed[0] == '[' {
		var events []json.RawMessage
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, errNotJSON
		}

		return events, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, errNotJSON
	}

	return []json.RawMessage{single}, nil
}
