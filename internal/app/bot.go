package app

import (
	"context"
	"errors"
	"sync"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
)

// Bot routes decoded updates to the quiz flow and the side-flows.
// Updates of one user must not be handled concurrently (see Dispatcher).
type Bot struct {
	platform Platform
	refs     *References
	ledger   *Ledger
	results  *ResultCalculator
	prompts  *Prompts
	convs    *Conversations
	notifier *Notifier
	log      *logger.Logger

	identityMu sync.Mutex
	identity   *domain.BotIdentity
}

// BotDeps bundles the collaborators of a Bot.
type BotDeps struct {
	Platform      Platform
	References    *References
	Ledger        *Ledger
	Results       *ResultCalculator
	Prompts       *Prompts
	Conversations *Conversations
	Notifier      *Notifier
	Log           *logger.Logger
}

func NewBot(deps BotDeps) *Bot {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{
		platform: deps.Platform,
		refs:     deps.References,
		ledger:   deps.Ledger,
		results:  deps.Results,
		prompts:  deps.Prompts,
		convs:    deps.Conversations,
		notifier: deps.Notifier,
		log:      log.With("component", "bot"),
	}
}

// Handle processes one update to completion. Errors are reported, never returned.
func (b *Bot) Handle(ctx context.Context, upd domain.Update) {
	if upd.Sender.ID == 0 {
		b.log.Debug("update without sender ignored", "update_id", upd.ID)
		return
	}
	switch upd.Kind {
	case domain.UpdateCommand:
		b.handleCommand(ctx, upd)
	case domain.UpdateCallback:
		b.handleCallback(ctx, upd)
	case domain.UpdateText:
		b.handleText(ctx, upd)
	default:
		b.log.Debug("unsupported update ignored", "update_id", upd.ID)
	}
}

func (b *Bot) handleCommand(ctx context.Context, upd domain.Update) {
	var err error
	switch upd.Command {
	case "start":
		if err = b.convs.Abandon(ctx, upd.Key()); err == nil {
			_, err = b.prompts.Send(ctx, upd.ChatID, welcomePrompt())
		}
	case "quiz":
		err = b.startQuiz(ctx, upd)
	case "contact":
		err = b.convs.StartContact(ctx, upd, 0)
	case "feedback":
		err = b.convs.StartFeedback(ctx, upd)
	case "cancel":
		err = b.convs.Cancel(ctx, upd)
	case "help":
		b.reply(ctx, upd, textHelp)
	default:
		b.reply(ctx, upd, textHint)
	}
	if err != nil {
		b.fail(ctx, upd, "command /"+upd.Command, err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, upd domain.Update) {
	data := upd.CallbackData
	var err error
	switch {
	case data == domain.CallbackStartQuiz:
		b.ack(ctx, upd, "")
		err = b.startQuiz(ctx, upd)
	case domain.IsAnswerCallback(data):
		err = b.answer(ctx, upd)
	case domain.IsContactCallback(data):
		b.ack(ctx, upd, "")
		var target int64
		if target, err = domain.ParseContactCallback(data); err == nil {
			err = b.convs.StartContact(ctx, upd, target)
		}
	default:
		b.ack(ctx, upd, "")
		err = domain.ErrMalformedCallback
	}
	if err != nil {
		b.fail(ctx, upd, "callback", err)
	}
}

func (b *Bot) handleText(ctx context.Context, upd domain.Update) {
	handled, err := b.convs.HandleText(ctx, upd)
	if err != nil {
		b.fail(ctx, upd, "text input", err)
		return
	}
	if !handled {
		b.reply(ctx, upd, textHint)
	}
}

// startQuiz begins a fresh attempt of the active quiz.
func (b *Bot) startQuiz(ctx context.Context, upd domain.Update) error {
	key := upd.Key()
	if err := b.convs.Abandon(ctx, key); err != nil {
		return err
	}
	if err := b.prompts.ClearCurrent(ctx, key, upd.ChatID); err != nil {
		return err
	}

	quiz, ok, err := b.refs.ActiveQuiz(ctx)
	if err != nil {
		return err
	}
	if !ok {
		b.notFound(ctx, upd, domain.ErrNoActiveQuiz, textNoActiveQuiz)
		return nil
	}

	if err := b.ledger.ResetAttempt(ctx, key.UserID, quiz.ID); err != nil {
		return err
	}

	question, ok, err := b.refs.FirstQuestion(ctx, quiz.ID)
	if err != nil {
		return err
	}
	if !ok {
		b.notFound(ctx, upd, domain.ErrQuizHasNoQuestions, textQuizHasNoQuestions, "quiz_id", quiz.ID)
		return nil
	}
	return b.showQuestion(ctx, upd, quiz.ID, question)
}

func (b *Bot) showQuestion(ctx context.Context, upd domain.Update, quizID int64, q domain.Question) error {
	answers, err := b.refs.Answers(ctx, q.ID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		if err := b.prompts.ClearCurrent(ctx, upd.Key(), upd.ChatID); err != nil {
			return err
		}
		b.notFound(ctx, upd, domain.ErrQuestionHasNoAnswers, textNoAnswers, "quiz_id", quizID, "question_id", q.ID)
		return nil
	}
	_, err = b.prompts.ShowNext(ctx, upd.Key(), upd.ChatID, questionPrompt(quizID, q, answers))
	return err
}

// answer records a tapped answer and moves on to the next question or the result.
func (b *Bot) answer(ctx context.Context, upd domain.Update) error {
	cb, err := domain.ParseAnswerCallback(upd.CallbackData)
	if err != nil {
		b.ack(ctx, upd, "")
		return err
	}
	key := upd.Key()

	current, err := b.prompts.Current(ctx, key)
	if err != nil {
		b.ack(ctx, upd, "")
		return err
	}
	if current == 0 || current != upd.MessageID {
		b.ack(ctx, upd, textStaleQuestion)
		return nil
	}

	answers, err := b.refs.Answers(ctx, cb.QuestionID)
	if err != nil {
		b.ack(ctx, upd, "")
		return err
	}
	if !containsAnswer(answers, cb.AnswerID) {
		b.ack(ctx, upd, "")
		return domain.ErrMalformedCallback
	}
	b.ack(ctx, upd, "")

	if err := b.ledger.Record(ctx, key.UserID, cb.QuizID, cb.QuestionID, cb.AnswerID); err != nil {
		return err
	}

	// Once the answer is recorded the prompt must not stay answerable, or a
	// retap would count the same question twice.
	if err := b.advance(ctx, upd, cb.QuizID, cb.QuestionID); err != nil {
		b.abandonAttempt(ctx, upd, cb.QuizID)
		return err
	}
	return nil
}

func (b *Bot) advance(ctx context.Context, upd domain.Update, quizID, questionID int64) error {
	next, ok, err := b.refs.NextQuestion(ctx, quizID, questionID)
	if err != nil {
		return err
	}
	if ok {
		return b.showQuestion(ctx, upd, quizID, next)
	}
	return b.finish(ctx, upd, quizID)
}

// abandonAttempt voids an attempt interrupted after its ledger changed.
func (b *Bot) abandonAttempt(ctx context.Context, upd domain.Update, quizID int64) {
	key := upd.Key()
	if err := b.prompts.Retire(ctx, key, upd.ChatID, textAttemptInterrupted); err != nil {
		b.notifier.ReportError(ctx, "retire prompt", err, "user_id", key.UserID, "quiz_id", quizID)
	}
	if err := b.ledger.ResetAttempt(ctx, key.UserID, quizID); err != nil {
		b.notifier.ReportError(ctx, "reset interrupted attempt", err, "user_id", key.UserID, "quiz_id", quizID)
	}
}

// finish resolves the attempt, discards its ledger and delivers the result.
func (b *Bot) finish(ctx context.Context, upd domain.Update, quizID int64) error {
	key := upd.Key()
	outcome, ok, err := b.results.Resolve(ctx, key.UserID, quizID)
	if err != nil {
		return err
	}
	if err := b.ledger.ResetAttempt(ctx, key.UserID, quizID); err != nil {
		b.notifier.ReportError(ctx, "reset finished attempt", err, "user_id", key.UserID, "quiz_id", quizID)
	}
	if err := b.prompts.ClearCurrent(ctx, key, upd.ChatID); err != nil {
		b.notifier.ReportError(ctx, "clear prompt", err, "user_id", key.UserID)
	}

	if !ok {
		b.notFound(ctx, upd, domain.ErrResultUndetermined, textUndetermined, "quiz_id", quizID)
		return nil
	}
	b.log.Info("quiz finished", "user_id", key.UserID, "quiz_id", quizID, "outcome", outcome.Name)
	b.deliverResult(ctx, upd, outcome)
	return nil
}

// deliverResult sends the result card as a photo and falls back to plain text.
func (b *Bot) deliverResult(ctx context.Context, upd domain.Update, outcome domain.OutcomeEntity) {
	p := resultPrompt(outcome, b.botUsername(ctx))
	if p.PhotoURL != "" {
		_, err := b.platform.SendPhoto(ctx, upd.ChatID, p.PhotoURL, p.Text, p.Keyboard)
		if err == nil {
			return
		}
		b.notifier.ReportError(ctx, "send result photo", err, "user_id", upd.Sender.ID, "outcome_id", outcome.ID)
	}
	if _, err := b.platform.SendText(ctx, upd.ChatID, p.Text, p.Keyboard); err != nil {
		b.notifier.ReportError(ctx, "send result", err, "user_id", upd.Sender.ID, "outcome_id", outcome.ID)
	}
}

func (b *Bot) botUsername(ctx context.Context) string {
	b.identityMu.Lock()
	defer b.identityMu.Unlock()
	if b.identity == nil {
		me, err := b.platform.Me(ctx)
		if err != nil {
			b.notifier.ReportError(ctx, "get bot identity", err)
			return ""
		}
		b.identity = &me
	}
	return b.identity.Username
}

func (b *Bot) ack(ctx context.Context, upd domain.Update, text string) {
	if upd.CallbackID == "" {
		return
	}
	if err := b.platform.AnswerCallback(ctx, upd.CallbackID, text); err != nil {
		b.log.Warn("answer callback failed", "user_id", upd.Sender.ID, "error", err)
	}
}

func (b *Bot) reply(ctx context.Context, upd domain.Update, text string) {
	if _, err := b.platform.SendText(ctx, upd.ChatID, text, nil); err != nil {
		b.notifier.ReportError(ctx, "reply", err, "user_id", upd.Sender.ID)
	}
}

// notFound tells the user about a missing reference condition and reports it.
func (b *Bot) notFound(ctx context.Context, upd domain.Update, cause error, userText string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"user_id", upd.Sender.ID}, keysAndValues...)
	b.notifier.ReportError(ctx, "quiz flow", cause, kv...)
	b.reply(ctx, upd, userText)
}

// fail classifies an error that aborted the turn.
func (b *Bot) fail(ctx context.Context, upd domain.Update, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedCallback):
		b.log.Warn("malformed input ignored", "op", op, "user_id", upd.Sender.ID, "data", upd.CallbackData, "error", err)
	case errors.Is(err, domain.ErrPlatformRequest):
		b.notifier.ReportError(ctx, op, err, "user_id", upd.Sender.ID)
	default:
		b.notifier.ReportError(ctx, op, err, "user_id", upd.Sender.ID)
		b.reply(ctx, upd, textGenericFailure)
	}
}

func containsAnswer(answers []domain.Answer, answerID int64) bool {
	for _, a := range answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}
