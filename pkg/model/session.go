package model

import (
	"fmt"
	"strings"
)

type SessionID string

const (
	SessionFP1        SessionID = "FP1"
	SessionFP2        SessionID = "FP2"
	SessionFP3        SessionID = "FP3"
	SessionQualifying SessionID = "Q"
	SessionSprint     SessionID = "S"
	SessionSprintQ    SessionID = "SQ"
	SessionRace       SessionID = "R"
)

// detailed lap and telemetry data is not available before this season
const MinTelemetryYear = 2018

var knownSessions = map[SessionID]bool{
	SessionFP1: true, SessionFP2: true, SessionFP3: true,
	SessionQualifying: true, SessionSprint: true, SessionSprintQ: true,
	SessionRace: true,
}

// SessionKey identifies one session of a race weekend
type SessionKey struct {
	Year    int
	Round   int
	Session SessionID
}

func ParseSessionID(s string) (SessionID, error) {
	id := SessionID(strings.ToUpper(strings.TrimSpace(s)))
	if !knownSessions[id] {
		return "", &ValidationError{
			Field:  "session",
			Reason: fmt.Sprintf("unsupported session %q (use FP1, FP2, FP3, Q, S, SQ, R)", s),
		}
	}
	return id, nil
}

func (k SessionKey) Validate() error {
	if !knownSessions[k.Session] {
		return &ValidationError{
			Field:  "session",
			Reason: fmt.Sprintf("unsupported session %q", k.Session),
		}
	}
	if k.Year < MinTelemetryYear {
		return &ValidationError{
			Field: "year",
			Reason: fmt.Sprintf("no detailed telemetry available for year %d (min %d)",
				k.Year, MinTelemetryYear),
		}
	}
	if k.Round < 1 {
		return &ValidationError{Field: "round", Reason: "round must be >= 1"}
	}
	return nil
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d R%d %s", k.Year, k.Round, k.Session)
}
