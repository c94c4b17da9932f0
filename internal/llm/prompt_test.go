package llm

import (
	"strings"
	"testing"
)

func TestBuildPrompt_ContainsInput(t *testing.T) {
	inputs := []string{
		"你好",
		"学习汉语很有趣!",
		"",
		"{\"original\": \"nested\"}",
		strings.Repeat("长", 2000),
		"line one\nline two",
	}

	for _, input := range inputs {
		prompt := BuildPrompt(input)
		if !strings.Contains(prompt, input) {
			t.Errorf("BuildPrompt(%q) does not contain the input", input)
		}
		if !strings.HasSuffix(prompt, input) {
			t.Errorf("BuildPrompt(%q) should end with the input", input)
		}
	}
}

func TestBuildPrompt_NamesFields(t *testing.T) {
	prompt := BuildPrompt("你好")
	for _, field := range []string{"'original'", "'pinyin'", "'translation'", "'language'", "'code'"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt does not mention field %s", field)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	if BuildPrompt("你好") != BuildPrompt("你好") {
		t.Error("BuildPrompt is not deterministic")
	}
}
