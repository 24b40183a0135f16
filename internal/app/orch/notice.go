package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

// Notice codes sent to a connection that made a mistake.
const (
	CodeMissingFields    = "missing_fields"
	CodeInvalidToken     = "invalid_token"
	CodeInvalidUsername  = "invalid_username"
	CodeInvalidRoom      = "invalid_room"
	CodeInvalidMessageID = "invalid_message_id"
	CodeAlreadyMember    = "already_member"
	CodeDuplicateMessage = "duplicate_message_id"
	CodeBadPayload       = "bad_payload"
	CodeRateLimited      = "rate_limited"
)

var noticeCodes = []struct {
	err  error
	code string
}{
	{domain.ErrMissingFields, CodeMissingFields},
	{domain.ErrInvalidToken, CodeInvalidToken},
	{domain.ErrTokenTooLong, CodeInvalidToken},
	{domain.ErrUsernameEmpty, CodeInvalidUsername},
	{domain.ErrUsernameTooLong, CodeInvalidUsername},
	{domain.ErrRoomNameTooLong, CodeInvalidRoom},
	{domain.ErrMessageIDTooLong, CodeInvalidMessageID},
	{domain.ErrAlreadyMember, CodeAlreadyMember},
	{domain.ErrDuplicateMessage, CodeDuplicateMessage},
}

func NewNotice(code, message string) core.Notice {
	return core.Notice{Type: core.EventNotice, Level: "error", Code: code, Message: message}
}

// NoticeFor classifies err. Caller mistakes yield a notice; races and
// unauthorized requests report false and are dropped.
func NoticeFor(err error) (core.Notice, bool) {
	for _, nc := range noticeCodes {
		if errors.Is(err, nc.err) {
			return NewNotice(nc.code, nc.err.Error()), true
		}
	}
	return core.Notice{}, false
}

// Report sends the notice for err to sid, or logs it at debug level.
func (o *Orchestrator) Report(sid core.SessionID, err error) {
	if err == nil {
		return
	}
	if n, ok := NoticeFor(err); ok {
		o.Relay.SendTo(sid, n)
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("code", n.Code).Msg("request refused")
		return
	}
	log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("request dropped")
}
