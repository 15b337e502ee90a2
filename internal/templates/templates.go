// Package templates holds the built-in instruction pages.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed instructions
var instructionFS embed.FS

// ErrNoTemplate is returned when no built-in page exists for a screen.
var ErrNoTemplate = errors.New("no built-in instruction page")

// InstructionData fills the placeholders of the instruction pages.
type InstructionData struct {
	ResponseKey    string
	PrimeAnswerKey string
	BlockTotal     int
}

// Instruction renders the built-in page for task/genre/subgenre.
func Instruction(task, genre, subgenre string, data InstructionData) (string, error) {
	name := path.Join("instructions", task, genre, subgenre+".tmpl")
	content, err := instructionFS.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s/%s/%s", ErrNoTemplate, task, genre, subgenre)
	}
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Screens lists every built-in screen as task/genre/subgenre.
func Screens() ([]string, error) {
	var screens []string
	err := fs.WalkDir(instructionFS, "instructions", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, "instructions/")
		screens = append(screens, strings.TrimSuffix(rel, ".tmpl"))
		return nil
	})
	return screens, err
}

// WriteInstructions renders every built-in screen into dir as
// {task}/{genre}/{subgenre}/01.txt. Screens that already have a folder are
// left alone. It returns the files written.
func WriteInstructions(dir string, data InstructionData) ([]string, error) {
	screens, err := Screens()
	if err != nil {
		return nil, err
	}

	var written []string
	for _, screen := range screens {
		parts := strings.Split(screen, "/")
		if len(parts) != 3 {
			continue
		}
		target := filepath.Join(dir, parts[0], parts[1], parts[2])
		if _, err := os.Stat(target); err == nil {
			continue
		}

		text, err := Instruction(parts[0], parts[1], parts[2], data)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(target, 0755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", target, err)
		}
		file := filepath.Join(target, "01.txt")
		if err := os.WriteFile(file, []byte(text+"\n"), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", file, err)
		}
		written = append(written, file)
	}
	return written, nil
}
