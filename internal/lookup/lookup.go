// Package lookup implements the public tracking-code status check with a
// per-client cooldown between attempts.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/core/common/validation"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
)

type State string

const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateResult      State = "result"
	StateNotFound    State = "not_found"
	StateError       State = "error"
	StateCoolingDown State = "cooling_down"
)

type Outcome struct {
	State      State                   `json:"state"`
	Report     *villageapi.GuestReport `json:"report,omitempty"`
	Message    string                  `json:"message,omitempty"`
	RetryAfter time.Duration           `json:"-"`
	// RetryAfterSeconds is the countdown shown next to the disabled submit.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`
}

type StatusAPI interface {
	GuestReportStatus(ctx context.Context, trackingCode string) (*villageapi.GuestReport, error)
}

type Service struct {
	api      StatusAPI
	cooldown *Cooldown
	logger   *slog.Logger
}

func NewService(api StatusAPI, cooldown *Cooldown, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, cooldown: cooldown, logger: logger}
}

// Status reports whether clientKey is idle or still cooling down.
func (s *Service) Status(clientKey string) Outcome {
	if wait := s.cooldown.Remaining(clientKey); wait > 0 {
		return coolingDown(wait)
	}
	return Outcome{State: StateIdle}
}

// Check looks up a tracking code. Every attempt that reaches the API starts
// the cooldown, whatever its result. Attempts during the cooldown are
// answered locally. A blank or oversized code is a validation error and
// does not count as an attempt.
func (s *Service) Check(ctx context.Context, clientKey, code string) (Outcome, error) {
	code = strings.TrimSpace(code)
	if appErr := validation.ValidateTrackingCode(code); appErr != nil {
		return Outcome{State: StateIdle, Message: appErr.GetDetailedMessage()}, appErr
	}

	ok, wait := s.cooldown.Allow(clientKey)
	if !ok {
		s.logger.Debug("status lookup rejected during cooldown", "client", clientKey, "retry_after", wait)
		return coolingDown(wait), nil
	}

	s.logger.Info("status lookup", "state", StateChecking, "client", clientKey)
	report, err := s.api.GuestReportStatus(ctx, code)
	if err != nil {
		if villageapi.IsNotFound(err) {
			return Outcome{State: StateNotFound, Message: "No registration was found for that tracking code."}, nil
		}
		s.logger.Warn("status lookup failed", "client", clientKey, "error", err)
		return Outcome{State: StateError, Message: "The status could not be checked right now. Please try again shortly."}, nil
	}
	return Outcome{State: StateResult, Report: report}, nil
}

func coolingDown(wait time.Duration) Outcome {
	secs := int(math.Ceil(wait.Seconds()))
	return Outcome{
		State:             StateCoolingDown,
		Message:           fmt.Sprintf("Please wait %d seconds before checking again.", secs),
		RetryAfter:        wait,
		RetryAfterSeconds: secs,
	}
}
