package extract

import "testing"

func TestExtract_Fenced(t *testing.T) {
	r := Extract("prefix ```json\n{\"a\":1}\n``` suffix")
	if r.Strategy != StrategyFenced {
		t.Fatalf("Strategy = %q, want %q", r.Strategy, StrategyFenced)
	}
	if r.Object["a"] != float64(1) {
		t.Errorf("a = %v, want 1", r.Object["a"])
	}
}

func TestExtract_FencedUppercaseTag(t *testing.T) {
	r := Extract("```JSON\n{\"header_summary\": \"ok\"}\n```")
	if r.Strategy != StrategyFenced {
		t.Fatalf("Strategy = %q, want %q", r.Strategy, StrategyFenced)
	}
	if r.Object["header_summary"] != "ok" {
		t.Errorf("header_summary = %v, want ok", r.Object["header_summary"])
	}
}

func TestExtract_FencedWithoutTag(t *testing.T) {
	r := Extract("Here you go:\n```\n{\"score\": 72}\n```")
	if r.Strategy != StrategyFenced || r.Object["score"] != float64(72) {
		t.Errorf("got %+v", r)
	}
}

func TestExtract_NoData(t *testing.T) {
	r := Extract("no data here")
	if r.OK() || r.Object != nil {
		t.Errorf("got %+v, want failure", r)
	}
	if r.Strategy != StrategyFailed {
		t.Errorf("Strategy = %q, want %q", r.Strategy, StrategyFailed)
	}
}

func TestExtract_Empty(t *testing.T) {
	for _, in := range []string{"", "   \n\t "} {
		if r := Extract(in); r.OK() {
			t.Errorf("Extract(%q) = %+v, want failure", in, r)
		}
	}
}

func TestExtract_TrailingJunk(t *testing.T) {
	r := Extract(`{"a":1} trailing junk`)
	if !r.OK() {
		t.Fatal("expected an object")
	}
	if r.Strategy != StrategyBraceScanned {
		t.Errorf("Strategy = %q, want %q", r.Strategy, StrategyBraceScanned)
	}
	if r.Object["a"] != float64(1) {
		t.Errorf("a = %v, want 1", r.Object["a"])
	}
}

func TestExtract_ProseAroundObject(t *testing.T) {
	r := Extract("Sure! Here is the report: {\"observations\": [\"x\", \"y\", \"z\"]} Let me know.")
	if r.Strategy != StrategyBraceScanned {
		t.Fatalf("Strategy = %q, want %q", r.Strategy, StrategyBraceScanned)
	}
	obs, ok := r.Object["observations"].([]any)
	if !ok || len(obs) != 3 {
		t.Errorf("observations = %#v", r.Object["observations"])
	}
}

func TestExtract_RepairsTrailingCommas(t *testing.T) {
	r := Extract(`Result: {"a": [1, 2,], "b": "x,}",} and then {more}`)
	if r.Strategy != StrategyRepaired {
		t.Fatalf("Strategy = %q, want %q", r.Strategy, StrategyRepaired)
	}
	if r.Object["b"] != "x,}" {
		t.Errorf("b = %v, want the string literal untouched", r.Object["b"])
	}
	if a, ok := r.Object["a"].([]any); !ok || len(a) != 2 {
		t.Errorf("a = %#v", r.Object["a"])
	}
}

func TestExtract_NonObjectRejected(t *testing.T) {
	for _, in := range []string{"[1,2,3]", `"just a string"`, "42", "null"} {
		if r := Extract(in); r.OK() {
			t.Errorf("Extract(%q) = %+v, want failure", in, r)
		}
	}
}

func TestExtract_BrokenFenceFallsThrough(t *testing.T) {
	r := Extract("```json\n{not json}\n```")
	if r.OK() {
		t.Errorf("got %+v, want failure", r)
	}
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1,}`, `{"a":1}`},
		{"[1,2,\n ]", "[1,2\n ]"},
		{`{"s":",}"}`, `{"s":",}"}`},
		{`{"s":"\",}",}`, `{"s":"\",}"}`},
	}
	for _, tt := range tests {
		if got := stripTrailingCommas(tt.in); got != tt.want {
			t.Errorf("stripTrailingCommas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPartial(t *testing.T) {
	obj, strategy := Partial("")
	if obj != nil || strategy != "" {
		t.Errorf("Partial(\"\") = %v, %q; want nil, empty", obj, strategy)
	}

	obj, strategy = Partial(`{"score": 5}`)
	if strategy != StrategyBraceScanned || obj["score"] != 5.0 {
		t.Errorf("Partial(object) = %v, %q", obj, strategy)
	}

	obj, strategy = Partial("just words")
	if strategy != StrategyFailed || obj["narrative"] != "just words" {
		t.Errorf("Partial(prose) = %v, %q; want narrative fallback", obj, strategy)
	}
}
