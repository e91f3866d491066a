package pkg

import (
	"strings"
	"testing"
)

func TestFoldASCII(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Final Fantasy VII", "Final Fantasy VII"},
		{"Pokémon Stadium", "Pokemon Stadium"},
		{"Tomba! 2: The Evil Swine Return", "Tomba! 2 - The Evil Swine Return"},
		{"Ｆｕｌｌｗｉｄｔｈ", "Fullwidth"},
		{"What?/Why*", "WhatWhy"},
		{"  spaced   out  ", "spaced out"},
		{"ドラゴン", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := FoldASCII(tc.input); got != tc.expected {
				t.Errorf("FoldASCII(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	long := strings.Repeat("a", 60)

	testCases := []struct {
		name     string
		title    string
		disc     int
		expected string
	}{
		{"single disc", "Metal Gear Solid", 0, "Metal Gear Solid"},
		{"multi disc", "Metal Gear Solid", 2, "Metal Gear Solid (Disc 2)"},
		{"capped", long, 0, long[:47]},
		{"capped with disc", long, 1, long[:47] + " (Disc 1)"},
		{"trailing space after cap", strings.Repeat("b", 46) + " cd", 0, strings.Repeat("b", 46)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayName(tc.title, tc.disc, 47); got != tc.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestDirectoryName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Final Fantasy VII (Disc 1)", "Final Fantasy VII"},
		{"Final Fantasy VII (Disc 12)", "Final Fantasy VII"},
		{"Crash Bandicoot", "Crash Bandicoot"},
		{"Disc", "Disc"},
	}

	for _, tc := range testCases {
		if got := DirectoryName(tc.input); got != tc.expected {
			t.Errorf("DirectoryName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestCueFallbackName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Crash Bandicoot (USA) (Track 1).bin", "Crash Bandicoot (USA)"},
		{"Crash Bandicoot.bin", "Crash Bandicoot"},
		{"Vol.1 (Track 01).bin", "Vol-1"},
		{`C:\games\Ape Escape.bin`, "Ape Escape"},
		{"sub/dir/Spyro.BIN", "Spyro"},
	}

	for _, tc := range testCases {
		if got := CueFallbackName(tc.input); got != tc.expected {
			t.Errorf("CueFallbackName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
