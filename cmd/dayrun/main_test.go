package main

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TestMain pins the color profile to Ascii so rendering tests see the
// same plain output regardless of the terminal the tests run in;
// init() in main.go would otherwise force ANSI256 from the host env.
func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}
