package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"totem-quiz-bot/internal/domain"
)

// Catalog is the YAML shape of a quiz definition set.
type Catalog struct {
	Outcomes  []domain.OutcomeEntity `yaml:"outcomes"`
	Questions []CatalogQuestion      `yaml:"questions"`
	Quizzes   []CatalogQuiz          `yaml:"quizzes"`
}

type CatalogQuestion struct {
	ID      int64           `yaml:"id"`
	Text    string          `yaml:"text"`
	Answers []domain.Answer `yaml:"answers"`
}

type CatalogQuiz struct {
	domain.Quiz `yaml:",inline"`
	Questions   []CatalogPlacement `yaml:"questions"`
}

type CatalogPlacement struct {
	QuestionID int64 `yaml:"question_id"`
	Order      int   `yaml:"order"`
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (Catalog, error) {
	var catalog Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, err
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ReferenceStore serves quiz definitions from memory (useful for tests/demos).
type ReferenceStore struct {
	mu         sync.RWMutex
	quizzes    map[int64]domain.Quiz
	placements map[int64][]domain.QuizQuestion
	answers    map[int64][]domain.Answer
	outcomes   map[int64]domain.OutcomeEntity
}

// NewReferenceStore validates the catalog invariants and indexes it.
func NewReferenceStore(catalog Catalog) (*ReferenceStore, error) {
	s := &ReferenceStore{
		quizzes:    make(map[int64]domain.Quiz),
		placements: make(map[int64][]domain.QuizQuestion),
		answers:    make(map[int64][]domain.Answer),
		outcomes:   make(map[int64]domain.OutcomeEntity),
	}

	names := make(map[string]struct{}, len(catalog.Outcomes))
	for _, o := range catalog.Outcomes {
		if _, dup := names[o.Name]; dup {
			return nil, fmt.Errorf("duplicate outcome name %q", o.Name)
		}
		names[o.Name] = struct{}{}
		s.outcomes[o.ID] = o
	}

	questions := make(map[int64]domain.Question, len(catalog.Questions))
	answerIDs := make(map[int64]struct{})
	for _, q := range catalog.Questions {
		questions[q.ID] = domain.Question{ID: q.ID, Text: q.Text}
		for _, a := range q.Answers {
			if _, dup := answerIDs[a.ID]; dup {
				return nil, fmt.Errorf("answer %d listed under more than one question", a.ID)
			}
			answerIDs[a.ID] = struct{}{}
			for _, oid := range a.OutcomeEntityIDs {
				if _, ok := s.outcomes[oid]; !ok {
					return nil, fmt.Errorf("answer %d links unknown outcome %d", a.ID, oid)
				}
			}
			a.QuestionID = q.ID
			s.answers[q.ID] = append(s.answers[q.ID], a)
		}
	}

	active := 0
	for _, quiz := range catalog.Quizzes {
		if quiz.IsActive {
			active++
		}
		s.quizzes[quiz.ID] = quiz.Quiz

		orders := make(map[int]struct{}, len(quiz.Questions))
		seen := make(map[int64]struct{}, len(quiz.Questions))
		placed := make([]domain.QuizQuestion, 0, len(quiz.Questions))
		for _, p := range quiz.Questions {
			q, ok := questions[p.QuestionID]
			if !ok {
				return nil, fmt.Errorf("quiz %d places unknown question %d", quiz.ID, p.QuestionID)
			}
			if _, dup := orders[p.Order]; dup {
				return nil, fmt.Errorf("quiz %d repeats order %d", quiz.ID, p.Order)
			}
			if _, dup := seen[p.QuestionID]; dup {
				return nil, fmt.Errorf("quiz %d repeats question %d", quiz.ID, p.QuestionID)
			}
			orders[p.Order] = struct{}{}
			seen[p.QuestionID] = struct{}{}
			placed = append(placed, domain.QuizQuestion{Question: q, Order: p.Order})
		}
		sort.Slice(placed, func(i, j int) bool { return placed[i].Order < placed[j].Order })
		s.placements[quiz.ID] = placed
	}
	if active > 1 {
		return nil, fmt.Errorf("catalog marks %d quizzes active, at most one allowed", active)
	}
	return s, nil
}

func (s *ReferenceStore) ActiveQuiz(_ context.Context) (domain.Quiz, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.IsActive {
			return quiz, true, nil
		}
	}
	return domain.Quiz{}, false, nil
}

func (s *ReferenceStore) QuestionsInOrder(_ context.Context, quizID int64) ([]domain.QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	placed := s.placements[quizID]
	out := make([]domain.QuizQuestion, len(placed))
	copy(out, placed)
	return out, nil
}

func (s *ReferenceStore) Answers(_ context.Context, questionID int64) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := s.answers[questionID]
	out := make([]domain.Answer, len(answers))
	for i, a := range answers {
		a.OutcomeEntityIDs = append([]int64(nil), a.OutcomeEntityIDs...)
		out[i] = a
	}
	return out, nil
}

func (s *ReferenceStore) OutcomeEntity(_ context.Context, id int64) (domain.OutcomeEntity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outcomes[id]
	return o, ok, nil
}

// ActivateQuiz marks quizID active and every other quiz inactive in one step.
func (s *ReferenceStore) ActivateQuiz(_ context.Context, quizID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	for id, quiz := range s.quizzes {
		quiz.IsActive = id == quizID
		s.quizzes[id] = quiz
	}
	return nil
}
