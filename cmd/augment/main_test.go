package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("augment %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestReadList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.txt")
	content := "# comment\na.png 1\n\n/abs/b.png 2\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := readList(list, "/data")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].path != "/data/a.png" || entries[0].label != 1 ||
		entries[1].path != "/abs/b.png" || entries[1].label != 2 {
		t.Errorf("Unexpected entries: %+v", entries)
	}

	if err := os.WriteFile(list, []byte("a.png one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readList(list, dir); err == nil {
		t.Error("Expected error for non-numeric label")
	}
}

// TestConvertMeanRun drives the full convert → mean → run flow
func TestConvertMeanRun(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 100)
	writePNG(t, filepath.Join(dir, "b.png"), 200)
	list := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(list, []byte("a.png 0\nb.png 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	records := filepath.Join(dir, "train.ldat")
	meanFile := filepath.Join(dir, "mean.bin")

	execute(t, "convert", "--list", list, "--root", dir, "--out", records, "--gray")
	execute(t, "mean", "--in", records, "--out", meanFile)
	out := execute(t, "run", "--in", records, "--mean", meanFile, "--phase", "test",
		"--crop", "4", "--batch", "2", "--workers", "2")

	if !strings.Contains(out, "shape=[2 1 4 4]") || !strings.Contains(out, "processed=2") {
		t.Errorf("Unexpected run output: %q", out)
	}
	// Mean is 150 everywhere, so the two samples land at -50 and +50.
	if !strings.Contains(out, "min=-50.0000") || !strings.Contains(out, "max=50.0000") {
		t.Errorf("Unexpected statistics: %q", out)
	}
}
