package main

import (
	"bytes"
	"strings"
	"testing"
)

type helpOutputCase struct {
	name string
	args []string
	want []string
}

func TestCLIHelpOutput(t *testing.T) {
	t.Parallel()

	cases := []helpOutputCase{
		{
			name: "root_help",
			args: []string{"--help"},
			want: []string{
				"kumpel is a personal desktop assistant",
				"Available Commands:",
				"onboard",
				"Ask the assistant a one-shot question",
				"Run an interactive local chat session (CLI mode)",
				"Run the Discord gateway, screen logger, and health server",
				"Inspect and refresh remembered facts",
				"Manage dispatch abbreviation lookups",
				"Manage captured screenshots",
				"Print version and build info",
			},
		},
		{
			name: "ask_help",
			args: []string{"ask", "--help"},
			want: []string{
				"kumpel ask --screen",
				"--message",
				"--session",
				"--screen",
				"Capture a screenshot and ask the vision model",
			},
		},
		{
			name: "facts_help",
			args: []string{"facts", "--help"},
			want: []string{
				"List remembered facts",
				"Re-scan the interaction log for new facts",
			},
		},
		{
			name: "abbrev_help",
			args: []string{"abbrev", "--help"},
			want: []string{
				"Store or update an abbreviation",
				"List known abbreviations",
				"Expand abbreviations found in text",
			},
		},
		{
			name: "screenshots_help",
			args: []string{"screenshots", "--help"},
			want: []string{
				"Delete captured screenshots",
				"Print the screenshot directory",
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			output, err := captureCLIOutput(tc.args...)
			if err != nil {
				t.Fatalf("run %v: %v\noutput:\n%s", tc.args, err, output)
			}

			for _, want := range tc.want {
				if !strings.Contains(output, want) {
					t.Errorf("help output for %v missing %q\nOutput:\n%s", tc.args, want, output)
				}
			}
		})
	}
}

func TestCLIRootWithoutSubcommand(t *testing.T) {
	t.Parallel()

	output, err := captureCLIOutput()
	if err == nil {
		t.Fatal("expected an error when no subcommand is given")
	}
	if !strings.Contains(err.Error(), "missing subcommand") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Available Commands:") {
		t.Fatalf("expected help to be printed, got:\n%s", output)
	}
}

func TestCLIUnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := captureCLIOutput("bogus")
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	if !strings.Contains(err.Error(), `unknown command "bogus" for "kumpel"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func captureCLIOutput(args ...string) (string, error) {
	cmd := newRootCmd(false)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// A nil slice would make cobra fall back to os.Args, which carries
	// the test binary's flags.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}
