package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstruction_RendersKeys(t *testing.T) {
	text, err := Instruction("n-back", "prompts", "2-back", InstructionData{ResponseKey: "a"})
	if err != nil {
		t.Fatalf("Instruction failed: %v", err)
	}
	if !strings.Contains(text, `"a"`) || !strings.Contains(text, "two pictures back") {
		t.Errorf("text = %q", text)
	}
}

func TestInstruction_Unknown(t *testing.T) {
	_, err := Instruction("n-back", "prompts", "4-back", InstructionData{})
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("Instruction error = %v, want ErrNoTemplate", err)
	}
}

func TestScreens_CoverEveryShownScreen(t *testing.T) {
	screens, err := Screens()
	if err != nil {
		t.Fatalf("Screens failed: %v", err)
	}
	have := make(map[string]bool)
	for _, s := range screens {
		have[s] = true
	}

	for _, want := range []string{
		"n-back/instructions/start",
		"n-back/instructions/practice",
		"n-back/instructions/test",
		"n-back/instructions/end",
		"n-back/prompts/1-back",
		"n-back/prompts/2-back",
		"n-back/prompts/3-back",
		"prime/instructions/start",
		"prime/instructions/practice",
		"prime/instructions/test",
		"prime/instructions/halfway",
		"prime/instructions/end",
	} {
		if !have[want] {
			t.Errorf("missing screen %s", want)
		}
	}
}

func TestWriteInstructions_SkipsExisting(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "prime", "instructions", "end")
	if err := os.MkdirAll(custom, 0755); err != nil {
		t.Fatal(err)
	}

	written, err := WriteInstructions(dir, InstructionData{ResponseKey: "a", PrimeAnswerKey: "space", BlockTotal: 4})
	if err != nil {
		t.Fatalf("WriteInstructions failed: %v", err)
	}
	if len(written) != 11 {
		t.Errorf("written = %d files, want 11", len(written))
	}
	if _, err := os.Stat(filepath.Join(custom, "01.txt")); !os.IsNotExist(err) {
		t.Error("existing folder should be left alone")
	}

	data, err := os.ReadFile(filepath.Join(dir, "n-back", "instructions", "test", "01.txt"))
	if err != nil {
		t.Fatalf("test page missing: %v", err)
	}
	if !strings.Contains(string(data), "4 rounds") {
		t.Errorf("test page = %q", data)
	}
}
