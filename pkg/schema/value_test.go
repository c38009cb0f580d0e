package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValueCoercions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value Value
		text  string
		num   float64
		empty bool
	}{
		{name: "zero value", value: Value{}, text: "", num: 0, empty: true},
		{name: "blank string", value: String("   "), text: "   ", num: 0, empty: true},
		{name: "numeric string", value: String(" 30 "), text: " 30 ", num: 30, empty: false},
		{name: "word", value: String("abc"), text: "abc", num: 0, empty: false},
		{name: "infinity string", value: String("Inf"), text: "Inf", num: 0, empty: false},
		{name: "number", value: Number(1.5), text: "1.5", num: 1.5, empty: false},
		{name: "zero number", value: Number(0), text: "0", num: 0, empty: false},
		{name: "true", value: Bool(true), text: "true", num: 0, empty: false},
		{name: "false", value: Bool(false), text: "false", num: 0, empty: true},
		{name: "empty list", value: List(), text: "", num: 0, empty: true},
		{name: "list", value: List("a", "b"), text: "a,b", num: 0, empty: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.value.Text(); got != tc.text {
				t.Fatalf("Text: expected %q, got %q", tc.text, got)
			}
			if got := tc.value.Float(); got != tc.num {
				t.Fatalf("Float: expected %v, got %v", tc.num, got)
			}
			if got := tc.value.IsEmpty(); got != tc.empty {
				t.Fatalf("IsEmpty: expected %v, got %v", tc.empty, got)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		1994:                 "1994",
		0.1 + 0.2:            "0.30000000000000004",
		-2.5:                 "-2.5",
		math.Copysign(0, -1): "0",
		1e20:                 "100000000000000000000",
		1e21:                 "1e+21",
		math.Pow(10, 30):     "1e+30",
		-2.5e25:              "-2.5e+25",
		0.000001:             "0.000001",
		1.5e-7:               "1.5e-7",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestValuesJSON(t *testing.T) {
	t.Parallel()

	values := Values{
		"name":   String("Ada"),
		"age":    Number(36),
		"agree":  Bool(true),
		"topics": List("sales"),
	}

	payload, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Values
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(values, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	var bad Values
	if err := json.Unmarshal([]byte(`{"topics":[1,2]}`), &bad); err == nil {
		t.Fatalf("expected error for non-string list items")
	}
}

func TestValuesCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := Values{"topics": List("a")}
	clone := original.Clone()
	clone["topics"] = List("b")
	clone["extra"] = String("x")

	if !original.Equal(Values{"topics": List("a")}) {
		t.Fatalf("clone mutated original: %#v", original)
	}
	items, _ := original["topics"].Items()
	items[0] = "mutated"
	if got, _ := original["topics"].Items(); got[0] != "a" {
		t.Fatalf("Items should return a copy, got %v", got)
	}
}
