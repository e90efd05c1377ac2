package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	for _, name := range []string{"dir", "skip-crawl", "skip-ocr", "continue-on-error", "base-url", "ocr-workers", "workers", "columns"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestRunRunCmd(t *testing.T) {
	t.Parallel()

	t.Run("classify only", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfigFile(t, "corpus: txt\n")
		out, err := runRoot(t, "run", "-c", cfgPath, "--skip-crawl", "--skip-ocr",
			"--no-save", "--dir", writeCorpus(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "0002-bad.txt\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("crawl then classify", func(t *testing.T) {
		t.Parallel()

		srv := newDictionarySite(t)
		images := t.TempDir()
		corpusDir := t.TempDir()
		pages := map[string]string{
			"0-a.txt":     columnPage(),
			"1-abbot.txt": columnPage(),
			"2-dag.txt":   "dag | dage\n",
		}
		for name, body := range pages {
			if err := os.WriteFile(filepath.Join(corpusDir, name), []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
		}
		cfgPath := writeConfigFile(t, "corpus: txt\n")

		out, err := runRoot(t, "run", "-c", cfgPath, "--no-save",
			"--base-url", srv.URL+"/kalkar", "--delay", "0s",
			"--images", images, "--dir", corpusDir,
			"--tesseract", filepath.Join(t.TempDir(), "no-tesseract"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "2-dag.txt\n" {
			t.Errorf("unexpected output %q", out)
		}
		if _, err := os.Stat(filepath.Join(images, "2-dag.gif")); err != nil {
			t.Errorf("scan not downloaded: %v", err)
		}
	})

	t.Run("ocr failure stops the run", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfigFile(t, "corpus: txt\n")
		_, err := runRoot(t, "run", "-c", cfgPath, "--skip-crawl", "--no-save",
			"--images", filepath.Join(t.TempDir(), "absent"), "--dir", writeCorpus(t))
		if err == nil || !strings.Contains(err.Error(), "ocr") {
			t.Errorf("expected ocr step error, got %v", err)
		}
	})
}
