package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestTargetsRoundTrip(t *testing.T) {
	targets := []ListTarget{
		{ListName: "*Today*", BoardID: "5f1a2b3c4d5e6f7a8b9c0d1e", Emoji: "📅"},
		{ListName: "In \"Progress\"", BoardID: "https://trello.com/b/AbC123/work", Emoji: "🔥"},
	}

	raw, err := EncodeTargets(targets)
	if err != nil {
		t.Fatalf("EncodeTargets: %v", err)
	}
	got, err := ParseTargets(raw)
	if err != nil {
		t.Fatalf("ParseTargets: %v", err)
	}
	if !reflect.DeepEqual(got, targets) {
		t.Errorf("round trip = %+v, want %+v", got, targets)
	}
}

func TestParseTargetsStoredFormat(t *testing.T) {
	got, err := ParseTargets(`[{"listName":"Today","boardId":"b1","emoji":"📅"}]`)
	if err != nil {
		t.Fatalf("ParseTargets: %v", err)
	}
	want := []ListTarget{{ListName: "Today", BoardID: "b1", Emoji: "📅"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v", got)
	}
}

func TestParseTargetsFallsBackToEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "[]"} {
		got, err := ParseTargets(raw)
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("ParseTargets(%q) = %v, %v", raw, got, err)
		}
	}

	got, err := ParseTargets("{not json")
	if err == nil {
		t.Errorf("expected an error for malformed JSON")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("malformed JSON should still yield an empty slice, got %v", got)
	}
}

func TestListTargetNormalizeAndValidate(t *testing.T) {
	target := ListTarget{ListName: "  Today ", BoardID: " b1 "}.Normalize()
	if target.ListName != "Today" || target.BoardID != "b1" || target.Emoji != DefaultEmoji {
		t.Errorf("normalized = %+v", target)
	}
	if err := target.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	err := ListTarget{ListName: "Today"}.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing board should be a configuration error, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ConfigurationError{Target: "Today", Reason: "missing board ID"}, "Config Error: missing board ID"},
		{&NoMatchError{Pattern: "Someday", Available: []string{"Today"}}, `No lists match pattern "Someday"`},
		{&NoMatchError{Pattern: "Someday"}, "No lists found on board"},
		{&AccessError{BoardID: "b1", Err: &TransportError{Status: 401, Message: "invalid token"}}, "Error: HTTP 401: invalid token"},
		{&ResponseFormatError{Err: errors.New("unexpected end of JSON input")}, "Error: invalid JSON response: unexpected end of JSON input"},
		{&TransportError{Status: 502, Err: errors.New("unexpected EOF")}, "Error: HTTP 502: unexpected EOF"},
		{&TransportError{Method: "GET", URL: "https://api.trello.com/1/boards/b1", Err: errors.New("connection reset")}, "Error: GET https://api.trello.com/1/boards/b1: connection reset"},
		{errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
