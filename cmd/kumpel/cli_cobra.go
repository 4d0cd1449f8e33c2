package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func runCLI() error {
	return newRootCmd(true).Execute()
}

func newRootCmd(withDocs bool) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "kumpel",
		Short: "Personal desktop assistant with screen awareness, style mimicry, and a long memory",
		Long: strings.TrimSpace(`kumpel is a personal desktop assistant for a dispatch workplace.

Use CLI commands to onboard, ask one-shot questions, chat locally, run the
Discord gateway with screen logging, and manage remembered facts and
abbreviations.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("missing subcommand")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Print version and build info")

	root.AddCommand(newOnboardCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newGatewayCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newFactsCmd())
	root.AddCommand(newAbbrevCmd())
	root.AddCommand(newScreenshotsCmd())
	root.AddCommand(newVersionCmd())

	if withDocs {
		root.AddCommand(newDocsCmd(func() *cobra.Command { return newRootCmd(false) }))
	}

	return root
}

// invokeLegacy runs one of the plain os.Args command funcs with a
// substituted argument list.
func invokeLegacy(fn func(), args ...string) error {
	saved := os.Args
	os.Args = append([]string{saved[0]}, args...)
	defer func() { os.Args = saved }()
	fn()
	return nil
}

func newOnboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.kumpel config, workspace, and starter style samples",
		Long:    "Create default configuration, the workspace directory, and a starter style sample for a new kumpel installation.",
		Example: "  kumpel onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(onboard, "onboard")
		},
	}
}

func newAskCmd() *cobra.Command {
	var (
		message string
		session string
		screen  bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask the assistant a one-shot question",
		Long:  "Send a single question through the memory-backed assistant. With --screen a screenshot is captured and sent to the vision model.",
		Example: strings.Join([]string{
			"  kumpel ask -m \"Wann muss der CAD-Fall raus?\"",
			"  kumpel ask --screen",
			"  kumpel ask --screen -m \"Was zeigt das Outlook-Fenster?\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := []string{"ask"}
			if debug {
				legacyArgs = append(legacyArgs, "--debug")
			}
			if strings.TrimSpace(message) != "" {
				legacyArgs = append(legacyArgs, "--message", message)
			}
			if strings.TrimSpace(session) != "" {
				legacyArgs = append(legacyArgs, "--session", session)
			}
			if screen {
				legacyArgs = append(legacyArgs, "--screen")
			}
			return invokeLegacy(askCmd, legacyArgs...)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Question to send to the assistant")
	cmd.Flags().StringVarP(&session, "session", "s", "cli:default", "Session key for the interaction log")
	cmd.Flags().BoolVar(&screen, "screen", false, "Capture a screenshot and ask the vision model")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Verbose debug logging")

	return cmd
}

func newChatCmd() *cobra.Command {
	var (
		session string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive local chat session (CLI mode)",
		Long:  "Start an interactive session against the assistant without Discord. Slash commands like /show and /facts work here too.",
		Example: strings.Join([]string{
			"  kumpel chat",
			"  kumpel chat --session cli:dispatch",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := []string{"chat"}
			if debug {
				legacyArgs = append(legacyArgs, "--debug")
			}
			if strings.TrimSpace(session) != "" {
				legacyArgs = append(legacyArgs, "--session", session)
			}
			return invokeLegacy(chatCmd, legacyArgs...)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "cli:default", "Session key for the interaction log")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Verbose debug logging")

	return cmd
}

func newGatewayCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "gateway",
		Short:   "Run the Discord gateway, screen logger, and health server",
		Long:    "Start channel adapters, the memory-backed assistant, the periodic screen logger, and health endpoints.",
		Example: "  kumpel gateway --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := []string{"gateway"}
			if debug {
				legacyArgs = append(legacyArgs, "--debug")
			}
			return invokeLegacy(gatewayCmd, legacyArgs...)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Verbose debug logging")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show config, provider, and workspace readiness",
		Example: "  kumpel status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(statusCmd, "status")
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version and build info",
		Example: "  kumpel version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}

func newFactsCmd() *cobra.Command {
	factsRoot := &cobra.Command{
		Use:   "facts",
		Short: "Inspect and refresh remembered facts",
		Long:  "List the knowledge the assistant has derived from past conversations, or re-scan the interaction log.",
	}

	factsRoot.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List remembered facts",
		Example: "  kumpel facts list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(factsCmd, "facts", "list")
		},
	})

	factsRoot.AddCommand(&cobra.Command{
		Use:     "refresh",
		Short:   "Re-scan the interaction log for new facts",
		Example: "  kumpel facts refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(factsCmd, "facts", "refresh")
		},
	})

	return factsRoot
}

func newAbbrevCmd() *cobra.Command {
	abbrevRoot := &cobra.Command{
		Use:   "abbrev",
		Short: "Manage dispatch abbreviation lookups",
		Long:  "Store, list, and decode the abbreviation codes used around the dispatch desk (LSTC, DFSM, and friends).",
	}

	var ref string

	add := &cobra.Command{
		Use:   "add <code> <meaning...>",
		Short: "Store or update an abbreviation",
		Args:  cobra.MinimumNArgs(2),
		Example: strings.Join([]string{
			"  kumpel abbrev add LSTC Logistik-Support-Ticket-Center",
			"  kumpel abbrev add DFSM \"Dell Field Service Manager\" --ref wiki/tools",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := append([]string{"abbrev", "add"}, args...)
			if strings.TrimSpace(ref) != "" {
				legacyArgs = append(legacyArgs, "--ref", ref)
			}
			return invokeLegacy(abbrevCmd, legacyArgs...)
		},
	}
	add.Flags().StringVar(&ref, "ref", "", "Where the expansion comes from (ticket, wiki page)")
	abbrevRoot.AddCommand(add)

	abbrevRoot.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List known abbreviations",
		Example: "  kumpel abbrev list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(abbrevCmd, "abbrev", "list")
		},
	})

	abbrevRoot.AddCommand(&cobra.Command{
		Use:     "decode <text...>",
		Short:   "Expand abbreviations found in text",
		Args:    cobra.MinimumNArgs(1),
		Example: "  kumpel abbrev decode \"CAD offen, LSTC checken\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(abbrevCmd, append([]string{"abbrev", "decode"}, args...)...)
		},
	})

	return abbrevRoot
}

func newScreenshotsCmd() *cobra.Command {
	screenshotsRoot := &cobra.Command{
		Use:   "screenshots",
		Short: "Manage captured screenshots",
	}

	screenshotsRoot.AddCommand(&cobra.Command{
		Use:     "clear",
		Short:   "Delete captured screenshots",
		Example: "  kumpel screenshots clear",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(screenshotsCmd, "screenshots", "clear")
		},
	})

	screenshotsRoot.AddCommand(&cobra.Command{
		Use:     "dir",
		Short:   "Print the screenshot directory",
		Example: "  kumpel screenshots dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeLegacy(screenshotsCmd, "screenshots", "dir")
		},
	})

	return screenshotsRoot
}
