package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"totem-quiz-bot/internal/app"
	"totem-quiz-bot/internal/cache"
	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/infra/memory"
)

const operatorChat = int64(-1000)

type call struct {
	method    string
	chatID    int64
	messageID int64
	text      string
	photo     string
	keyboard  domain.Keyboard
}

// fakePlatform records every outbound call and hands out increasing message ids.
type fakePlatform struct {
	mu         sync.Mutex
	nextID     int64
	calls      []call
	failPhoto  bool
	failDelete error
	failEdit   error
	failSendTo map[int64]bool
	username   string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{nextID: 100, username: "zoo_totem_bot", failSendTo: map[int64]bool{}}
}

func (p *fakePlatform) record(c call) {
	p.mu.Lock()
	p.calls = append(p.calls, c)
	p.mu.Unlock()
}

func (p *fakePlatform) SendText(_ context.Context, chatID int64, text string, kb domain.Keyboard) (int64, error) {
	p.mu.Lock()
	fail := p.failSendTo[chatID]
	p.mu.Unlock()
	if fail {
		return 0, fmt.Errorf("%w: sendMessage: chat not found", domain.ErrPlatformRequest)
	}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.calls = append(p.calls, call{method: "sendText", chatID: chatID, messageID: id, text: text, keyboard: kb})
	p.mu.Unlock()
	return id, nil
}

func (p *fakePlatform) SendPhoto(_ context.Context, chatID int64, photoURL, caption string, kb domain.Keyboard) (int64, error) {
	if p.failPhoto {
		return 0, fmt.Errorf("%w: sendPhoto: wrong file identifier", domain.ErrPlatformRequest)
	}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.calls = append(p.calls, call{method: "sendPhoto", chatID: chatID, messageID: id, text: caption, photo: photoURL, keyboard: kb})
	p.mu.Unlock()
	return id, nil
}

func (p *fakePlatform) EditText(_ context.Context, chatID, messageID int64, text string, kb domain.Keyboard) error {
	p.record(call{method: "editText", chatID: chatID, messageID: messageID, text: text, keyboard: kb})
	return p.failEdit
}

func (p *fakePlatform) DeleteMessage(_ context.Context, chatID, messageID int64) error {
	p.record(call{method: "delete", chatID: chatID, messageID: messageID})
	return p.failDelete
}

func (p *fakePlatform) AnswerCallback(_ context.Context, callbackID, text string) error {
	p.record(call{method: "answerCallback", text: text})
	return nil
}

func (p *fakePlatform) Me(_ context.Context) (domain.BotIdentity, error) {
	return domain.BotIdentity{ID: 1, Username: p.username}, nil
}

func (p *fakePlatform) callsOf(method string) []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePlatform) sentTo(chatID int64) []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if (c.method == "sendText" || c.method == "sendPhoto") && c.chatID == chatID {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePlatform) last(method string) call {
	calls := p.callsOf(method)
	if len(calls) == 0 {
		return call{}
	}
	return calls[len(calls)-1]
}

type harness struct {
	bot      *app.Bot
	platform *fakePlatform
	refs     *app.References
	ledger   *app.Ledger
	results  *app.ResultCalculator
	prompts  *app.Prompts
	convs    *app.Conversations
	sessions *memory.SessionStore
	notifier *app.Notifier
	feed     *app.Feed
}

func newHarness(t *testing.T, catalog memory.Catalog) *harness {
	t.Helper()
	return newHarnessWith(t, mustReferenceStore(t, catalog), memory.NewLedgerStore())
}

func mustReferenceStore(t *testing.T, catalog memory.Catalog) *memory.ReferenceStore {
	t.Helper()
	store, err := memory.NewReferenceStore(catalog)
	if err != nil {
		t.Fatalf("reference store: %v", err)
	}
	return store
}

func newHarnessWith(t *testing.T, store app.ReferenceStore, ledgerStore app.LedgerStore) *harness {
	t.Helper()
	platform := newFakePlatform()
	sessions := memory.NewSessionStore()
	feed := app.NewFeed()
	notifier := app.NewNotifier(platform, operatorChat, feed, nil)
	refs := app.NewReferences(store, cache.New(memory.NewCacheBackend(), time.Minute, nil))
	ledger := app.NewLedger(ledgerStore)
	results := app.NewResultCalculator(ledger, refs)
	prompts := app.NewPrompts(platform, sessions, notifier, nil)
	convs := app.NewConversations(platform, sessions, refs, notifier, nil)
	bot := app.NewBot(app.BotDeps{
		Platform:      platform,
		References:    refs,
		Ledger:        ledger,
		Results:       results,
		Prompts:       prompts,
		Conversations: convs,
		Notifier:      notifier,
	})
	return &harness{
		bot:      bot,
		platform: platform,
		refs:     refs,
		ledger:   ledger,
		results:  results,
		prompts:  prompts,
		convs:    convs,
		sessions: sessions,
		notifier: notifier,
		feed:     feed,
	}
}

var alice = domain.Sender{ID: 7, Username: "alice", FirstName: "Alice"}

func command(name, args string) domain.Update {
	return domain.Update{Kind: domain.UpdateCommand, Sender: alice, ChatID: alice.ID, Command: name, Args: args}
}

func text(s string) domain.Update {
	return domain.Update{Kind: domain.UpdateText, Sender: alice, ChatID: alice.ID, Text: s}
}

func tap(messageID int64, data string) domain.Update {
	return domain.Update{
		Kind:         domain.UpdateCallback,
		Sender:       alice,
		ChatID:       alice.ID,
		MessageID:    messageID,
		CallbackID:   fmt.Sprintf("cb-%d", messageID),
		CallbackData: data,
	}
}

func outcome(id int64, name string) domain.OutcomeEntity {
	return domain.OutcomeEntity{
		ID:        id,
		Name:      name,
		DetailURL: "https://zoo.example/" + name,
		ImageURL:  "https://zoo.example/" + name + ".jpg",
	}
}

// lionCatalog: Quiz{Q1 -> Q2}, Q1.A -> {Lion}, Q2.B -> {Lion}, Q1.C -> {Fox}.
func lionCatalog() memory.Catalog {
	return memory.Catalog{
		Outcomes: []domain.OutcomeEntity{outcome(1, "Lion"), outcome(2, "Fox")},
		Questions: []memory.CatalogQuestion{
			{ID: 11, Text: "Q1", Answers: []domain.Answer{
				{ID: 111, Text: "A", OutcomeEntityIDs: []int64{1}},
				{ID: 112, Text: "C", OutcomeEntityIDs: []int64{2}},
			}},
			{ID: 12, Text: "Q2", Answers: []domain.Answer{
				{ID: 121, Text: "B", OutcomeEntityIDs: []int64{1}},
			}},
		},
		Quizzes: []memory.CatalogQuiz{{
			Quiz:      domain.Quiz{ID: 1, Name: "Totem", IsActive: true},
			Questions: []memory.CatalogPlacement{{QuestionID: 12, Order: 20}, {QuestionID: 11, Order: 10}},
		}},
	}
}

// foxWolfCatalog: Quiz{Q1}, Q1.A -> {Fox}, Q1.B -> {Wolf}.
func foxWolfCatalog() memory.Catalog {
	return memory.Catalog{
		Outcomes: []domain.OutcomeEntity{outcome(1, "Fox"), outcome(2, "Wolf")},
		Questions: []memory.CatalogQuestion{
			{ID: 11, Text: "Q1", Answers: []domain.Answer{
				{ID: 111, Text: "A", OutcomeEntityIDs: []int64{1}},
				{ID: 112, Text: "B", OutcomeEntityIDs: []int64{2}},
			}},
		},
		Quizzes: []memory.CatalogQuiz{{
			Quiz:      domain.Quiz{ID: 1, Name: "Forest", IsActive: true},
			Questions: []memory.CatalogPlacement{{QuestionID: 11, Order: 1}},
		}},
	}
}
