package app

import (
	"fmt"
	"net/url"
	"strings"

	"totem-quiz-bot/internal/domain"
)

// Command is a bot command advertised to the platform's command menu.
type Command struct {
	Name        string
	Description string
}

// Commands lists the commands the bot registers at startup.
var Commands = []Command{
	{Name: "quiz", Description: "Find your totem animal"},
	{Name: "contact", Description: "Ask about animal guardianship"},
	{Name: "feedback", Description: "Leave feedback"},
	{Name: "cancel", Description: "Cancel the current request"},
	{Name: "help", Description: "What this bot can do"},
}

const (
	textWelcome = "Welcome to the Moscow Zoo bot!\n\n" +
		"Answer a few short questions and we will find out which of our animals " +
		"is closest to you in character: your totem animal.\n\n" +
		"Press the button below to begin."
	textHelp = "/quiz - take the totem animal quiz\n" +
		"/contact - ask the zoo about becoming a guardian\n" +
		"/feedback <text> - tell us what you think\n" +
		"/cancel - cancel a started request"
	textHint               = "Send /quiz to take the quiz or /help to see what I can do."
	textNoActiveQuiz       = "There is no active quiz right now."
	textQuizHasNoQuestions = "This quiz has no questions yet."
	textNoAnswers          = "Error: this question has no answer options!"
	textUndetermined       = "We could not determine your animal! Try /quiz once more."
	textStaleQuestion      = "This question is no longer active. Send /quiz to start over."
	textGenericFailure     = "Something went wrong on our side. Please try again later."
	textAttemptInterrupted = "This quiz attempt was interrupted. Send /quiz to start over."

	textContactPrompt     = "Write your question about guardianship and how to reach you. Send /cancel to stop."
	textContactPromptFor  = "Write your question about becoming a guardian of %s and how to reach you. Send /cancel to stop."
	textFeedbackPrompt    = "Write your feedback in one message. Send /cancel to stop."
	textContactThanks     = "Thank you! Our staff will get in touch with you."
	textFeedbackThanks    = "Thank you for your feedback!"
	textDeliveryFailed    = "Sorry, we could not deliver your message. Please try again later."
	textCancelled         = "Cancelled."
	textNothingToCancel   = "There is nothing to cancel."
	textEmptySubmission   = "Please send your message as text."
	buttonStartQuiz       = "Find my totem animal"
	buttonLearnMore       = "Learn more"
	buttonBecomeGuardian  = "Become a guardian"
	buttonShare           = "Share"
	buttonTryAgain        = "Try again"
	resultCaptionTemplate = "You are most like: %s"
)

func welcomePrompt() domain.Prompt {
	return domain.Prompt{
		Text: textWelcome,
		Keyboard: domain.Keyboard{
			{{Text: buttonStartQuiz, CallbackData: domain.CallbackStartQuiz}},
		},
	}
}

// questionPrompt lays the answers out two per row.
func questionPrompt(quizID int64, q domain.Question, answers []domain.Answer) domain.Prompt {
	var (
		keyboard domain.Keyboard
		row      []domain.Button
	)
	for _, a := range answers {
		row = append(row, domain.Button{
			Text:         a.Text,
			CallbackData: domain.EncodeAnswerCallback(quizID, q.ID, a.ID),
		})
		if len(row) == 2 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	return domain.Prompt{Text: q.Text, Keyboard: keyboard}
}

// resultPrompt builds the result card; botUsername may be empty, which drops the share button.
func resultPrompt(o domain.OutcomeEntity, botUsername string) domain.Prompt {
	caption := fmt.Sprintf(resultCaptionTemplate, o.Name)
	if o.DetailURL != "" {
		caption += "\n\n" + o.DetailURL
	}

	var keyboard domain.Keyboard
	if o.DetailURL != "" {
		keyboard = append(keyboard, []domain.Button{{Text: buttonLearnMore, URL: o.DetailURL}})
	}
	keyboard = append(keyboard, []domain.Button{{Text: buttonBecomeGuardian, CallbackData: domain.EncodeContactCallback(o.ID)}})
	if botUsername != "" {
		keyboard = append(keyboard, []domain.Button{{Text: buttonShare, URL: shareURL(botUsername, o.Name)}})
	}
	keyboard = append(keyboard, []domain.Button{{Text: buttonTryAgain, CallbackData: domain.CallbackStartQuiz}})

	return domain.Prompt{Text: caption, PhotoURL: o.ImageURL, Keyboard: keyboard}
}

func shareURL(botUsername, outcomeName string) string {
	q := url.Values{}
	q.Set("url", "https://t.me/"+botUsername)
	q.Set("text", fmt.Sprintf("My totem animal at the zoo is %s. Find yours!", outcomeName))
	return "https://t.me/share/url?" + q.Encode()
}

// profileRef renders a reference to the sender an operator can act on.
func profileRef(s domain.Sender) string {
	if s.Username != "" {
		return fmt.Sprintf("@%s (id %d)", s.Username, s.ID)
	}
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("%s (tg://user?id=%d)", name, s.ID)
}

func contactForward(s domain.Sender, outcomeName, text string) string {
	var b strings.Builder
	b.WriteString("📩 Guardianship request\n")
	b.WriteString("From: " + profileRef(s) + "\n")
	if outcomeName != "" {
		b.WriteString("Animal: " + outcomeName + "\n")
	}
	b.WriteString("\n" + text)
	return b.String()
}

func feedbackForward(s domain.Sender, text string) string {
	return "💬 Feedback\nFrom: " + profileRef(s) + "\n\n" + text
}
