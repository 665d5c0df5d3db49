package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewExecutionSnapshot_EmptyRunMarshalsEmptyArrays(t *testing.T) {
	snap := NewExecutionSnapshot("exec-1", time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC))

	doc, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(doc), "null") {
		t.Errorf("empty snapshot must serialize empty arrays, got %s", doc)
	}
	for _, rule := range AllRules {
		want := `"` + string(rule) + `":[]`
		if !strings.Contains(string(doc), want) {
			t.Errorf("missing %s in %s", want, doc)
		}
	}
}

func TestExecutionSnapshot_AppendAndMatches(t *testing.T) {
	snap := NewExecutionSnapshot("exec-1", time.Now())
	snap.Append(RuleLessThanMin90, RuleMatch{Ticker: "RY.TO", Price: 18.5, CompareWith: 19.2})

	got := snap.Matches(RuleLessThanMin90)
	if len(got) != 1 || got[0].Ticker != "RY.TO" {
		t.Errorf("Matches(lessThanMin90) = %+v", got)
	}
	if len(snap.Matches(RuleLessThanMin30)) != 0 {
		t.Error("untouched rule must stay empty")
	}
}
