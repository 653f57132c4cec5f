package ui

import (
	"errors"
	"strconv"
	"strings"
)

const (
	ModerationPrefix   = "m:"
	MaxCallbackDataLen = 64

	legacyApprovePrefix = "approve_"
	legacyDeclinePrefix = "decline_"
)

type Action string

const (
	ActionApprove Action = "a"
	ActionDecline Action = "d"
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionDecline:
		return "decline"
	default:
		return "unknown"
	}
}

// ModerationCallback is the decoded payload of an Approve/Decline button.
// Current buttons carry the submission ID; buttons sent before submission
// IDs existed carry only the submitter ID.
type ModerationCallback struct {
	Action        Action
	SubmissionID  string
	SubjectUserID int64
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidValue        = errors.New("invalid callback value")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildApproveCallback(submissionID string) (string, error) {
	return buildModerationCallback(ActionApprove, submissionID)
}

func BuildDeclineCallback(submissionID string) (string, error) {
	return buildModerationCallback(ActionDecline, submissionID)
}

// IsModerationCallback reports whether data belongs to the moderation
// buttons, including the legacy approve_<id>/decline_<id> form.
func IsModerationCallback(data string) bool {
	return strings.HasPrefix(data, ModerationPrefix) ||
		strings.HasPrefix(data, legacyApprovePrefix) ||
		strings.HasPrefix(data, legacyDeclinePrefix)
}

func ParseModerationCallback(data string) (ModerationCallback, error) {
	if data == "" {
		return ModerationCallback{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return ModerationCallback{}, errCallbackDataTooLong
	}

	switch {
	case strings.HasPrefix(data, legacyApprovePrefix):
		return parseLegacy(ActionApprove, strings.TrimPrefix(data, legacyApprovePrefix))
	case strings.HasPrefix(data, legacyDeclinePrefix):
		return parseLegacy(ActionDecline, strings.TrimPrefix(data, legacyDeclinePrefix))
	case !strings.HasPrefix(data, ModerationPrefix):
		return ModerationCallback{}, errInvalidPrefix
	}

	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return ModerationCallback{}, errInvalidAction
	}
	action, err := parseAction(parts[1])
	if err != nil {
		return ModerationCallback{}, err
	}
	if strings.TrimSpace(parts[2]) == "" {
		return ModerationCallback{}, errInvalidValue
	}
	return ModerationCallback{Action: action, SubmissionID: parts[2]}, nil
}

func buildModerationCallback(action Action, submissionID string) (string, error) {
	if _, err := parseAction(string(action)); err != nil {
		return "", err
	}
	if strings.TrimSpace(submissionID) == "" || strings.Contains(submissionID, ":") {
		return "", errInvalidValue
	}
	return validateCallbackData(ModerationPrefix + string(action) + ":" + submissionID)
}

func parseAction(value string) (Action, error) {
	switch Action(value) {
	case ActionApprove, ActionDecline:
		return Action(value), nil
	default:
		return "", errInvalidAction
	}
}

func parseLegacy(action Action, value string) (ModerationCallback, error) {
	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || userID <= 0 {
		return ModerationCallback{}, errInvalidValue
	}
	return ModerationCallback{Action: action, SubjectUserID: userID}, nil
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}
