// Kumpel - Personal desktop assistant with a long memory
// License: MIT
//
// Copyright (c) 2026 Kumpel contributors

package main

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dotsetgreg/kumpel/pkg/agent"
	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/capture"
	"github.com/dotsetgreg/kumpel/pkg/channels"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/health"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/dotsetgreg/kumpel/pkg/memory"
	"github.com/dotsetgreg/kumpel/pkg/providers"
	"github.com/dotsetgreg/kumpel/pkg/screenlog"
	"github.com/dotsetgreg/kumpel/pkg/speech"
	"github.com/dotsetgreg/kumpel/pkg/state"
	"github.com/dotsetgreg/kumpel/pkg/style"
)

//go:embed templates
var embeddedFiles embed.FS

// Overridden at link time via -ldflags.
var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "kumpel"

func versionLine() string {
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s (git: %s)", version, gitCommit)
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, versionLine())
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "onboard":
		onboard()
	case "ask":
		askCmd()
	case "chat":
		chatCmd()
	case "gateway":
		gatewayCmd()
	case "status":
		statusCmd()
	case "facts":
		factsCmd()
	case "abbrev":
		abbrevCmd()
	case "screenshots":
		screenshotsCmd()
	case "docs":
		// Maintenance commands live on the cobra tree only.
		if err := runCLI(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf("%s - Personal desktop assistant v%s\n\n", appName, version)
	fmt.Println("Usage: kumpel <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  onboard      Initialize kumpel configuration and workspace")
	fmt.Println("  ask          Ask a one-shot question (add --screen for a screenshot)")
	fmt.Println("  chat         Interactive chat session (CLI mode)")
	fmt.Println("  gateway      Start kumpel gateway")
	fmt.Println("  status       Show kumpel status")
	fmt.Println("  facts        Inspect and refresh remembered facts")
	fmt.Println("  abbrev       Manage abbreviation lookups")
	fmt.Println("  screenshots  Manage captured screenshots")
	fmt.Println("  version      Show version information")
}

func onboard() {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Found an existing config at %s\n", configPath)
		fmt.Print("Overwrite? (y/n): ")
		answer, readErr := bufio.NewReader(os.Stdin).ReadString('\n')
		if readErr != nil {
			fmt.Printf("Error reading input: %v\n", readErr)
			fmt.Println("Aborted.")
			return
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.WorkspacePath(), 0755); err != nil {
		fmt.Printf("Error creating workspace: %v\n", err)
		os.Exit(1)
	}
	if err := unpackTemplates(filepath.Dir(configPath)); err != nil {
		fmt.Printf("Error creating starter templates: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s is set up.\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Put your OpenRouter API key into", configPath)
	fmt.Println("     Keys: https://openrouter.ai/keys")
	fmt.Println("  2. Drop a few of your own mails into", cfg.StyleSampleDir())
	fmt.Println("     Plain .txt files; the assistant mimics their tone.")
	fmt.Println("  3. (Gateway mode) Add your Discord bot token and set channels.discord.enabled")
	fmt.Println("  4. Ask locally: kumpel ask -m \"Hallo!\"")
	fmt.Println("  5. Run gateway: kumpel gateway")
	fmt.Println("  6. Check readiness: kumpel status")
}

// unpackTemplates writes the embedded starter files (style samples and
// friends) below targetDir, keeping their layout.
func unpackTemplates(targetDir string) error {
	return fs.WalkDir(embeddedFiles, "templates", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		rel, err := filepath.Rel("templates", path)
		if err != nil {
			return err
		}
		target := filepath.Join(targetDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create template dir for %s: %w", rel, err)
		}
		data, err := embeddedFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded template %s: %w", path, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("write template %s: %w", target, err)
		}
		return nil
	})
}

func validateRuntimeConfig(cfg *config.Config, requireDiscord bool) error {
	configPath := getConfigPath()
	if err := providers.ValidateProviderConfig(cfg); err != nil {
		return fmt.Errorf("%w; edit %s", err, configPath)
	}
	if requireDiscord && strings.TrimSpace(cfg.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required in %s or KUMPEL_CHANNELS_DISCORD_TOKEN", configPath)
	}
	return nil
}

// flagValue consumes the argument after args[*i], advancing the index.
func flagValue(args []string, i *int) (string, bool) {
	if *i+1 >= len(args) {
		return "", false
	}
	*i++
	return args[*i], true
}

func enableDebug() {
	logger.SetLevel(logger.DEBUG)
	fmt.Println("🔍 Debug logging on")
}

func mustLoadConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func mustValidate(cfg *config.Config, requireDiscord bool) {
	if err := validateRuntimeConfig(cfg, requireDiscord); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		os.Exit(1)
	}
}

// buildRouter wires the full assistant stack from config: provider,
// completer, memory store, style profile, and speech output. The store
// is returned alongside the router so callers can inspect it; the
// router's Stop closes it.
func buildRouter(cfg *config.Config, msgBus *bus.MessageBus) (*agent.AssistantRouter, memory.Store, *providers.Completer, error) {
	provider, err := providers.CreateProvider(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create provider: %w", err)
	}
	completer := providers.NewCompleter(provider, cfg)

	store, err := memory.NewSQLiteStore(cfg.MemoryDBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open memory store: %w", err)
	}

	profile := style.BuildProfile(style.LoadSamples(cfg.StyleSampleDir()), cfg.Style.Author)
	styler := style.NewTransformer(profile)
	speaker := speech.NewFromConfig(cfg)

	router, err := agent.NewRouter(cfg, msgBus, store, completer, styler, speaker)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return router, store, completer, nil
}

func askCmd() {
	message := ""
	sessionKey := "cli:default"
	screen := false

	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug", "-d":
			enableDebug()
		case "-m", "--message":
			if v, ok := flagValue(args, &i); ok {
				message = v
			}
		case "-s", "--session":
			if v, ok := flagValue(args, &i); ok {
				sessionKey = v
			}
		case "--screen":
			screen = true
		}
	}

	if message == "" && !screen {
		fmt.Println("Usage: kumpel ask -m \"your question\" [--screen] [--session key]")
		os.Exit(1)
	}

	cfg := mustLoadConfig()
	mustValidate(cfg, false)

	msgBus := bus.NewMessageBus()
	router, _, _, err := buildRouter(cfg, msgBus)
	if err != nil {
		fmt.Printf("Error initializing assistant: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var response string
	if screen {
		capturer := capture.New(cfg)
		if !capturer.Available() {
			fmt.Println("Error: no screenshot tool found for this platform")
			os.Exit(1)
		}
		imagePath, err := capturer.CaptureScreen(ctx)
		if err != nil {
			fmt.Printf("Error capturing screen: %v\n", err)
			os.Exit(1)
		}
		response, err = router.ProcessVisionDirect(ctx, message, imagePath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		response, err = router.ProcessDirect(ctx, message, sessionKey)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\n%s: %s\n", appName, response)
	router.Stop()
}

func chatCmd() {
	sessionKey := "cli:default"

	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug", "-d":
			enableDebug()
		case "-s", "--session":
			if v, ok := flagValue(args, &i); ok {
				sessionKey = v
			}
		}
	}

	cfg := mustLoadConfig()
	mustValidate(cfg, false)

	msgBus := bus.NewMessageBus()
	router, _, _, err := buildRouter(cfg, msgBus)
	if err != nil {
		fmt.Printf("Error initializing assistant: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s Chat (beenden mit 'exit' oder Strg+C)\n\n", appName)
	interactiveMode(router, sessionKey)
	router.Stop()
}

// handleChatTurn feeds one line to the router and prints the answer.
// Returns false once the user asks to leave.
func handleChatTurn(router *agent.AssistantRouter, sessionKey, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}
	if input == "exit" || input == "quit" {
		return false
	}
	response, err := router.ProcessDirect(context.Background(), input, sessionKey)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return true
	}
	fmt.Printf("\n%s: %s\n\n", appName, response)
	return true
}

func interactiveMode(router *agent.AssistantRouter, sessionKey string) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Du: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".kumpel_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Readline unavailable (%v), reading from plain stdin\n", err)
		simpleInteractiveMode(router, sessionKey)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nBis bald!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !handleChatTurn(router, sessionKey, line) {
			fmt.Println("Bis bald!")
			return
		}
	}
}

func simpleInteractiveMode(router *agent.AssistantRouter, sessionKey string) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Du: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nBis bald!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !handleChatTurn(router, sessionKey, line) {
			fmt.Println("Bis bald!")
			return
		}
	}
}

func gatewayCmd() {
	for _, arg := range os.Args[2:] {
		if arg == "--debug" || arg == "-d" {
			enableDebug()
			break
		}
	}

	cfg := mustLoadConfig()
	mustValidate(cfg, cfg.Channels.Discord.Enabled)

	logPath := filepath.Join(cfg.WorkspacePath(), "logs", "kumpel.log")
	if err := logger.SetLogFile(logPath); err != nil {
		fmt.Printf("Warning: file logging disabled: %v\n", err)
	}

	msgBus := bus.NewMessageBus()
	router, store, completer, err := buildRouter(cfg, msgBus)
	if err != nil {
		fmt.Printf("Error initializing assistant: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n📦 Assistant Status:")
	startupCtx := context.Background()
	facts, _ := store.Facts(startupCtx, 0)
	abbrevs, _ := store.AllAbbreviations(startupCtx)
	fmt.Printf("  • Facts: %d loaded\n", len(facts))
	fmt.Printf("  • Abbreviations: %d known\n", len(abbrevs))

	logger.InfoCF("agent", "Assistant initialized",
		map[string]interface{}{
			"facts":         len(facts),
			"abbreviations": len(abbrevs),
			"text_model":    completer.TextModel(),
			"vision_model":  completer.VisionModel(),
		})

	stateManager := state.NewManager(cfg.WorkspacePath())
	capturer := capture.New(cfg)
	screenlogService := screenlog.NewService(cfg, capturer, completer, stateManager, msgBus)

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		fmt.Printf("Error setting up channels: %v\n", err)
		router.Stop()
		os.Exit(1)
	}

	enabledChannels := channelManager.GetEnabledChannels()
	if len(enabledChannels) == 0 {
		fmt.Println("✓ Channels enabled: none (local mode)")
	} else {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabledChannels, ", "))
	}

	fmt.Printf("✓ Gateway listening on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Println("Stop with Ctrl+C")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := screenlogService.Start(); err != nil {
		fmt.Printf("Error starting screen logger: %v\n", err)
	} else if cfg.Screenlog.Enabled && capturer.Available() {
		fmt.Println("✓ Screen logger started")
	}

	if err := channelManager.StartAll(ctx); err != nil {
		fmt.Printf("Error starting channel adapters: %v\n", err)
		cancel()
		screenlogService.Stop()
		router.Stop()
		os.Exit(1)
	}

	healthServer := health.NewServer(cfg.Gateway.Host, cfg.Gateway.Port)
	go func() {
		if err := healthServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("health", "Health listener failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	fmt.Printf("✓ Health endpoints at http://%s:%d/health and /ready\n", cfg.Gateway.Host, cfg.Gateway.Port)

	go router.Run(ctx)
	healthServer.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	fmt.Println("\nStopping gateway...")
	cancel()
	healthServer.Stop(context.Background())
	screenlogService.Stop()
	router.Stop()
	channelManager.StopAll(ctx)
	logger.Close()
	fmt.Println("✓ All services stopped")
}

func statusCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	configPath := getConfigPath()

	fmt.Printf("%s Status\n", appName)
	fmt.Printf("Version: %s\n", versionLine())
	if buildTime != "" {
		fmt.Printf("Build: %s\n", buildTime)
	}
	fmt.Println()

	fmt.Println("Config:", configPath, pathMark(configPath))
	workspace := cfg.WorkspacePath()
	fmt.Println("Workspace:", workspace, pathMark(workspace))
	memoryDB := cfg.MemoryDBPath()
	if _, err := os.Stat(memoryDB); err == nil {
		fmt.Println("Memory DB:", memoryDB, "✓")
	} else {
		fmt.Println("Memory DB:", memoryDB, "not initialized")
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Text model: %s\n", cfg.Agents.Defaults.TextModel)
		fmt.Printf("Vision model: %s\n", cfg.Agents.Defaults.VisionModel)
		fmt.Printf("Style samples: %d\n", len(style.LoadSamples(cfg.StyleSampleDir())))

		providerName, configured, mode, credErr := providers.ProviderCredentialStatus(cfg)
		apiReady := credErr == nil && configured
		if credErr != nil {
			fmt.Printf("Provider: %v\n", credErr)
		} else if mode != "" {
			fmt.Printf("Provider (%s, %s): %s\n", providerName, mode, readyMark(apiReady))
		} else {
			fmt.Printf("Provider (%s): %s\n", providerName, readyMark(apiReady))
		}

		discordEnabled := cfg.Channels.Discord.Enabled
		discordReady := strings.TrimSpace(cfg.Channels.Discord.Token) != ""
		fmt.Println("Discord token:", readyMark(discordReady))

		fmt.Println("Assistant ready:", readyMark(apiReady))
		fmt.Println("Gateway ready:", readyMark(apiReady && (!discordEnabled || discordReady)))
	}
}

func pathMark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}

func readyMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "not set"
}

// openStoreFromConfig loads the config and opens the memory store for the
// facts/abbrev maintenance commands. Errors are printed, not returned.
func openStoreFromConfig() (memory.Store, bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return nil, false
	}
	store, err := memory.NewSQLiteStore(cfg.MemoryDBPath())
	if err != nil {
		fmt.Printf("Error opening memory store: %v\n", err)
		return nil, false
	}
	return store, true
}

func factsCmd() {
	if len(os.Args) < 3 {
		factsHelp()
		return
	}

	subcommand := os.Args[2]

	store, ok := openStoreFromConfig()
	if !ok {
		return
	}
	defer store.Close()

	switch subcommand {
	case "list":
		factsListCmd(store)
	case "refresh":
		factsRefreshCmd(store)
	default:
		fmt.Printf("Unknown facts command: %s\n", subcommand)
		factsHelp()
	}
}

func factsHelp() {
	fmt.Println("\nFacts commands:")
	fmt.Println("  list       List remembered dispatch knowledge")
	fmt.Println("  refresh    Re-scan the interaction log for new facts")
}

func factsListCmd(store memory.Store) {
	ctx := context.Background()
	facts, err := store.Facts(ctx, 0)
	if err != nil {
		fmt.Printf("Error listing facts: %v\n", err)
		return
	}

	if len(facts) == 0 {
		fmt.Println("No facts stored yet. Run `kumpel facts refresh` or just start chatting.")
		return
	}

	fmt.Println("\nRemembered facts:")
	fmt.Println("----------------")
	for _, fact := range facts {
		fmt.Printf("  [%d] %s\n", fact.ID, fact.Text)
		fmt.Printf("    Source: %s\n", fact.Source)
		fmt.Printf("    Importance: %d\n", fact.Importance)
	}
}

func factsRefreshCmd(store memory.Store) {
	ctx := context.Background()
	extractor := memory.NewKnowledgeExtractor(store, store)
	added, err := extractor.Refresh(ctx)
	if err != nil {
		fmt.Printf("Error refreshing facts: %v\n", err)
		return
	}

	if len(added) == 0 {
		fmt.Println("No new facts.")
		return
	}

	fmt.Printf("%d new facts:\n", len(added))
	for _, fact := range added {
		fmt.Printf("  + %s\n", fact.Text)
	}
}

func abbrevCmd() {
	if len(os.Args) < 3 {
		abbrevHelp()
		return
	}

	subcommand := os.Args[2]

	store, ok := openStoreFromConfig()
	if !ok {
		return
	}
	defer store.Close()

	switch subcommand {
	case "add":
		abbrevAddCmd(store, os.Args[3:])
	case "list":
		abbrevListCmd(store)
	case "decode":
		abbrevDecodeCmd(store, strings.Join(os.Args[3:], " "))
	default:
		fmt.Printf("Unknown abbrev command: %s\n", subcommand)
		abbrevHelp()
	}
}

func abbrevHelp() {
	fmt.Println("\nAbbrev commands:")
	fmt.Println("  add <code> <meaning>   Store or update an abbreviation")
	fmt.Println("  list                   List known abbreviations")
	fmt.Println("  decode <text>          Expand abbreviations found in text")
	fmt.Println()
	fmt.Println("Add options:")
	fmt.Println("  --ref    Where the expansion comes from (ticket, wiki page)")
}

func abbrevAddCmd(store memory.Store, args []string) {
	ref := ""
	var positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--ref" {
			if i+1 < len(args) {
				ref = args[i+1]
				i++
			}
			continue
		}
		positional = append(positional, args[i])
	}

	if len(positional) < 2 {
		fmt.Println("Usage: kumpel abbrev add <code> <meaning> [--ref <note>]")
		return
	}

	code := positional[0]
	meaning := strings.Join(positional[1:], " ")

	ctx := context.Background()
	if err := store.UpsertAbbreviation(ctx, code, meaning, ref); err != nil {
		fmt.Printf("Error saving abbreviation: %v\n", err)
		return
	}
	fmt.Printf("Saved %s.\n", strings.ToUpper(strings.TrimSpace(code)))
}

func abbrevListCmd(store memory.Store) {
	ctx := context.Background()
	abbrevs, err := store.AllAbbreviations(ctx)
	if err != nil {
		fmt.Printf("Error listing abbreviations: %v\n", err)
		return
	}

	if len(abbrevs) == 0 {
		fmt.Println("No abbreviations stored.")
		return
	}

	fmt.Println("\nKnown abbreviations:")
	fmt.Println("----------------")
	for _, ab := range abbrevs {
		if ab.Ref != "" {
			fmt.Printf("  %-8s %s (%s)\n", ab.Code, ab.Meaning, ab.Ref)
		} else {
			fmt.Printf("  %-8s %s\n", ab.Code, ab.Meaning)
		}
	}
}

func abbrevDecodeCmd(store memory.Store, text string) {
	if strings.TrimSpace(text) == "" {
		fmt.Println("Usage: kumpel abbrev decode <text>")
		return
	}

	ctx := context.Background()
	decoder := memory.NewAbbrevDecoder(store)
	hits, err := decoder.Decode(ctx, text)
	if err != nil {
		fmt.Printf("Error decoding text: %v\n", err)
		return
	}

	if len(hits) == 0 {
		fmt.Println("No known abbreviations in that text.")
		return
	}

	for _, ab := range hits {
		fmt.Printf("  %s: %s\n", ab.Code, ab.Meaning)
	}
}

func screenshotsCmd() {
	if len(os.Args) < 3 {
		screenshotsHelp()
		return
	}

	subcommand := os.Args[2]

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	capturer := capture.New(cfg)

	switch subcommand {
	case "clear":
		removed := capturer.Cleanup()
		fmt.Printf("Deleted %d screenshots from %s\n", removed, capturer.Dir())
	case "dir":
		fmt.Println(capturer.Dir())
	default:
		fmt.Printf("Unknown screenshots command: %s\n", subcommand)
		screenshotsHelp()
	}
}

func screenshotsHelp() {
	fmt.Println("\nScreenshots commands:")
	fmt.Println("  clear    Delete captured screenshots")
	fmt.Println("  dir      Print the screenshot directory")
}

func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kumpel", "config.json")
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(getConfigPath())
}
