package main

import (
	"errors"
	"testing"
)

func TestHumanSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.00 MB"},
	}
	for _, c := range cases {
		if got := humanSize(c.n); got != c.want {
			t.Errorf("humanSize(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestExactArgsUsageError(t *testing.T) {
	err := exactArgs(1)(nil, []string{})
	if err == nil {
		t.Fatal("expected error for missing argument")
	}
	var ue *usageError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *usageError, got %T", err)
	}
	if err := exactArgs(1)(nil, []string{"in.pdf"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveQualitiesUnknownPreset(t *testing.T) {
	presetName = "ultra"
	defer func() { presetName = "" }()

	_, _, err := resolveQualities(compressCmd)
	var ue *usageError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *usageError for unknown preset, got %v", err)
	}
}

func TestResolveQualitiesPreset(t *testing.T) {
	presetName = "compact"
	defer func() { presetName = "" }()

	cq, gq, err := resolveQualities(compressCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cq != 30 || gq != 40 {
		t.Fatalf("compact preset = (%d, %d), want (30, 40)", cq, gq)
	}
}

func TestResolveQualitiesFlags(t *testing.T) {
	colorQuality, grayQuality = 80, 0
	defer func() { colorQuality, grayQuality = 0, 0 }()

	cq, gq, err := resolveQualities(compressCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cq != 80 {
		t.Errorf("color quality = %d, want the flag value 80", cq)
	}
	if gq != 55 {
		t.Errorf("gray quality = %d, want the default 55", gq)
	}
}
