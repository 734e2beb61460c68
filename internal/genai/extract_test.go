package genai

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONDirect(t *testing.T) {
	raw, ok := ExtractJSON(`{"mensaje":"hola","preguntas":[]}`)
	if !ok {
		t.Fatal("expected direct parse to succeed")
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["mensaje"] != "hola" {
		t.Fatalf("got %v", obj["mensaje"])
	}
}

func TestExtractJSONCodeFences(t *testing.T) {
	text := "```json\n{\"a\": 1}\n```"
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected fenced JSON to parse")
	}
	var obj map[string]int
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["a"] != 1 {
		t.Fatalf("got %d", obj["a"])
	}
}

func TestExtractJSONEmbeddedObject(t *testing.T) {
	text := `Sure! Here is the quiz you asked for: {"questions": [{"q": "x"}]} Hope it helps.`
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected embedded object to be found")
	}
	var obj struct {
		Questions []map[string]string `json:"questions"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(obj.Questions) != 1 {
		t.Fatalf("got %d questions", len(obj.Questions))
	}
}

func TestExtractJSONObjectEnclosingArray(t *testing.T) {
	// the array must not win over the object that contains it
	text := `Of course! {"message": "go", "questions": [{"text": "q1"}, {"text": "q2"}]} Good luck.`
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected embedded object to be found")
	}
	var obj struct {
		Message   string              `json:"message"`
		Questions []map[string]string `json:"questions"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj.Message != "go" || len(obj.Questions) != 2 {
		t.Fatalf("got %+v", obj)
	}
}

func TestExtractJSONArrayBeforeObject(t *testing.T) {
	text := `[{"title":"t1"}] trailing note {"ignored": true}`
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected array to be found")
	}
	var arr []map[string]string
	if err := json.Unmarshal(raw, &arr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(arr) != 1 || arr[0]["title"] != "t1" {
		t.Fatalf("got %+v", arr)
	}
}

func TestExtractJSONEmbeddedArray(t *testing.T) {
	text := `Recommendations below.\n[{"title":"t1"},{"title":"t2"}]\nDone.`
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected embedded array to be found")
	}
	var arr []map[string]string
	if err := json.Unmarshal(raw, &arr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(arr) != 2 {
		t.Fatalf("got %d entries", len(arr))
	}
}

func TestExtractJSONNoMatch(t *testing.T) {
	for _, text := range []string{"", "   ", "no json here", "just a ( paren )", `"bare string"`} {
		if _, ok := ExtractJSON(text); ok {
			t.Fatalf("expected no match for %q", text)
		}
	}
}
