package models

import (
	"encoding/json"
	"testing"
	"time"
)

func sample() *Submission {
	return &Submission{
		ID:        "12",
		Answers:   map[string]string{"nomes": "Ana e Bia", "telefone": "11999990000", "primeiro_encontro": "Cinema"},
		Status:    StatusInProgress,
		Notes:     "ligar amanhã",
		CreatedAt: "2025-03-10T14:00:00Z",
		Photos:    []Photo{{SubmissionID: "12", FilePath: "12/12_1.jpg", Caption: "Praia", Year: "2019"}},
	}
}

func TestSubmissionJSONIsFlat(t *testing.T) {
	data, err := json.Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	var flat map[string]any
	json.Unmarshal(data, &flat)
	for key, want := range map[string]any{
		"id": "12", "nomes": "Ana e Bia", "primeiro_encontro": "Cinema",
		"status": "em-andamento", "observacoes": "ligar amanhã", "pets": "",
	} {
		if flat[key] != want {
			t.Errorf("%s = %v, want %v", key, flat[key], want)
		}
	}
	if _, ok := flat["submission_photos"].([]any); !ok {
		t.Fatalf("photos missing: %v", flat["submission_photos"])
	}

	var back Submission
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != "12" || back.Answer("primeiro_encontro") != "Cinema" || len(back.Photos) != 1 || back.Photos[0].Caption != "Praia" {
		t.Fatalf("decode mismatch: %+v", back)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusInProgress, StatusDone} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("arquivado").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestFilterMatch(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	cases := []struct {
		name   string
		filter SubmissionFilter
		want   bool
	}{
		{"empty", SubmissionFilter{}, true},
		{"name case-insensitive", SubmissionFilter{Search: "ana"}, true},
		{"phone fragment", SubmissionFilter{Search: "99999"}, true},
		{"no match", SubmissionFilter{Search: "carla"}, false},
		{"status any", SubmissionFilter{Status: StatusAny}, true},
		{"status mismatch", SubmissionFilter{Status: StatusDone}, false},
		{"from same day", SubmissionFilter{From: day("2025-03-10")}, true},
		{"from later", SubmissionFilter{From: day("2025-03-11")}, false},
		{"to same day inclusive", SubmissionFilter{To: day("2025-03-10")}, true},
		{"to earlier", SubmissionFilter{To: day("2025-03-09")}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Match(sample()); got != tc.want {
			t.Errorf("%s: Match = %v, want %v", tc.name, got, tc.want)
		}
	}
}
