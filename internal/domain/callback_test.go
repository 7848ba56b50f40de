package domain

import (
	"errors"
	"testing"
)

func TestAnswerCallbackEncoding(t *testing.T) {
	data := EncodeAnswerCallback(3, 14, 159)
	if data != "quiz:3|14|159" {
		t.Fatalf("unexpected payload %q", data)
	}
	cb, err := ParseAnswerCallback(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cb.QuizID != 3 || cb.QuestionID != 14 || cb.AnswerID != 159 {
		t.Fatalf("unexpected callback %+v", cb)
	}
}

func TestParseAnswerCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{"quiz:", "quiz:1|2", "quiz:1|x|3", "quiz:1|2|3|4", "quiz:0|1|2", "other:1|2|3"} {
		if _, err := ParseAnswerCallback(data); !errors.Is(err, ErrMalformedCallback) {
			t.Fatalf("expected malformed error for %q, got %v", data, err)
		}
	}
}

func TestContactCallbackEncoding(t *testing.T) {
	data := EncodeContactCallback(42)
	if data != "contact_guardianship:42" {
		t.Fatalf("unexpected payload %q", data)
	}
	id, err := ParseContactCallback(data)
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	if _, err := ParseContactCallback("contact_guardianship:lion"); !errors.Is(err, ErrMalformedCallback) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
