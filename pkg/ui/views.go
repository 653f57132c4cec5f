package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
)

const (
	MsgGreeting        = "Hello! Use /add to save a link."
	MsgAddPrompt       = "Send keywords one by one. When done, send the link."
	MsgNeedKeyword     = "You must send at least one keyword before sending a link."
	MsgUseAddFirst     = "Use /add to start the process."
	MsgSubmitted       = "Your link has been submitted for approval."
	MsgNoResults       = "No links found for this keyword."
	MsgNoOwnLinks      = "You have not added any links yet."
	MsgCancelled       = "Submission cancelled."
	MsgNothingToCancel = "There is no submission in progress."
	MsgGenericFailure  = "Something went wrong. Please try again later."
	MsgRequestGone     = "This request no longer exists."
	MsgNotAllowed      = "Only the administrator can do that."
	MsgActionProcessed = "✅ Action processed successfully."
	MsgUnknownCommand  = "Unknown command"
)

const HelpText = "Commands:\n" +
	"* /add: submit a link. Send keywords one by one, then the link.\n" +
	"* /mylinks: list the links you added.\n" +
	"* /export: download your links as CSV.\n" +
	"* /cancel: abandon the current submission.\n\n" +
	"Send any other word to search approved links by keyword."

func KeywordAdded(keyword string) string {
	return fmt.Sprintf("Keyword '%s' added. Send more or send the link.", keyword)
}

func ApprovedNotice(url string) string {
	return fmt.Sprintf("✅ Your link '%s' has been approved!", url)
}

func DeclinedNotice(url string) string {
	return fmt.Sprintf("❌ Your link '%s' was declined.", url)
}

func LookupHeader(keyword string) string {
	return fmt.Sprintf("🔍 Links for '%s':", keyword)
}

const MyLinksHeader = "📌 Your Links:"

// RenderModerationRequest builds the admin message for a new submission with
// its Approve/Decline keyboard.
func RenderModerationRequest(submissionID string, submitterID int64, submitterName, url string, keywords []string) (string, *models.InlineKeyboardMarkup, error) {
	approveData, err := BuildApproveCallback(submissionID)
	if err != nil {
		return "", nil, err
	}
	declineData, err := BuildDeclineCallback(submissionID)
	if err != nil {
		return "", nil, err
	}

	user := fmt.Sprintf("%d", submitterID)
	if strings.TrimSpace(submitterName) != "" {
		user = fmt.Sprintf("%s (%d)", submitterName, submitterID)
	}
	text := fmt.Sprintf(
		"📝 New Link Submission\n"+
			"----------------------------------\n"+
			"👤 User: %s\n"+
			"🔗 Link: %s\n"+
			"🏷 Keywords: %s\n"+
			"----------------------------------",
		user,
		url,
		strings.Join(keywords, ", "),
	)

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Approve", CallbackData: approveData},
				{Text: "❌ Decline", CallbackData: declineData},
			},
		},
	}
	return text, keyboard, nil
}

// RenderResolved is the terminal text of a moderation message.
func RenderResolved(action Action, url string) string {
	verdict := "approved"
	if action == ActionDecline {
		verdict = "declined"
	}
	return fmt.Sprintf("%s\n%s: %s", MsgActionProcessed, verdict, url)
}

func DisplayName(user *models.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	switch {
	case name != "" && user.Username != "":
		return fmt.Sprintf("%s (@%s)", name, user.Username)
	case name != "":
		return name
	case user.Username != "":
		return "@" + user.Username
	default:
		return ""
	}
}
