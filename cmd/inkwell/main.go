// Package main provides the Inkwell CLI application entry point.
// Inkwell is an AI assistant for note vaults: it routes prompts to a
// configurable provider, folds in vault context and skill instructions,
// and bridges to external tool servers.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inkwell/internal/assembler"
	"inkwell/internal/catalog"
	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/mcp"
	"inkwell/internal/provider"
	"inkwell/internal/session"
	"inkwell/internal/skills"
	"inkwell/internal/vault"
	"inkwell/pkg/inktypes"
)

var (
	logLevel   string
	logFile    string
	configFile string
	vaultDir   string
	version    = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell - AI assistant for your notes vault",
	Long: `Inkwell is an AI assistant that lives alongside a notes vault.
It answers prompts with vault context attached, activates skills matched
from the prompt, and can reach external tool servers for file operations.`,
	Run: runChat, // Default behavior is to run the interactive chat
}

// chatCmd represents the chat command (explicit version of default behavior)
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `Start an interactive chat session against the configured provider.`,
	Run:   runChat,
}

// askCmd sends a single prompt and prints the reply
var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a single question and exit",
	Long: `Send one prompt through the full pipeline (skills, vault context,
provider routing) and print the reply.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAsk,
}

// skillsCmd lists the loaded skills
var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the loaded skills",
	Long:  `List the skills loaded from the vault skills directory, or the built-in set when none are found.`,
	Run:   runSkills,
}

// toolsCmd lists the tools advertised by the configured tool servers
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List tools from the configured tool servers",
	Run:   runTools,
}

// modelsCmd lists the known models from the embedded catalog
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models",
	Run:   runModels,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Inkwell v%s\n", version)
	},
}

var modelsProvider string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ./inkwell.yaml)")
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", ".", "Path to the notes vault root")

	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "Filter models by provider (openai|anthropic|custom)")

	// Bind flags to viper
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// app wires the assistant components for one CLI invocation.
type app struct {
	settings inktypes.Settings
	registry *skills.Registry
	bridge   *mcp.Bridge
	session  *session.Session
}

func newApp() (*app, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}
	store := vault.NewDirStore(root)

	registry := skills.NewRegistry()
	registry.Load(store, settings.SkillsDir)

	bridge := mcp.NewBridge(store, mcp.WithEndpoint(settings.MCPEndpoint))
	if settings.EnableMCP {
		bridge.Connect(context.Background(), mcp.ParseServerConfigs(settings.MCPServers))
	}

	router := provider.NewRouter(func() inktypes.Settings { return settings }, store.Root())

	return &app{
		settings: settings,
		registry: registry,
		bridge:   bridge,
		session:  session.New(registry, assembler.New(store), router),
	}, nil
}

func (a *app) close() {
	a.bridge.Disconnect()
}

func runChat(_ *cobra.Command, _ []string) {
	logger.Info("Starting Inkwell", "version", version)

	a, err := newApp()
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}
	defer a.close()

	fmt.Printf("Inkwell v%s - provider: %s\n", version, a.settings.Provider)
	fmt.Println("Type 'clear' to reset the conversation or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("inkwell> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return
		case "clear":
			a.session.Clear()
			fmt.Println("Conversation cleared.")
			continue
		}

		reply, ok := a.session.Submit(context.Background(), line)
		if !ok {
			continue
		}
		fmt.Print(renderMarkdown(reply.Content))
	}
}

func runAsk(_ *cobra.Command, args []string) {
	a, err := newApp()
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}
	defer a.close()

	reply, ok := a.session.Submit(context.Background(), strings.Join(args, " "))
	if !ok {
		logger.Fatal("Empty prompt")
	}
	fmt.Print(renderMarkdown(reply.Content))
}

func runSkills(_ *cobra.Command, _ []string) {
	a, err := newApp()
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}
	defer a.close()

	for _, skill := range a.registry.Skills() {
		state := ""
		if !skill.Enabled {
			state = " (disabled)"
		}
		fmt.Printf("%s v%s%s\n", skill.Name, skill.Version, state)
		fmt.Printf("  %s\n", skill.Description)
		if len(skill.Triggers) > 0 {
			fmt.Printf("  triggers: %s\n", strings.Join(skill.Triggers, ", "))
		}
	}
}

func runTools(_ *cobra.Command, _ []string) {
	settings, err := config.Load(configFile)
	if err != nil {
		logger.Fatal("Failed to load settings", "error", err)
	}

	root, err := filepath.Abs(vaultDir)
	if err != nil {
		logger.Fatal("Failed to resolve vault path", "error", err)
	}

	bridge := mcp.NewBridge(vault.NewDirStore(root), mcp.WithEndpoint(settings.MCPEndpoint))
	bridge.Connect(context.Background(), mcp.ParseServerConfigs(settings.MCPServers))
	defer bridge.Disconnect()

	for _, status := range bridge.ServerStatus() {
		fmt.Printf("%s: connected=%t tools=%d\n", status.Name, status.Connected, status.ToolCount)
	}
	for _, tool := range bridge.Tools() {
		fmt.Printf("  %s - %s\n", tool.Name, tool.Description)
	}
}

func runModels(_ *cobra.Command, _ []string) {
	c, err := catalog.Load()
	if err != nil {
		logger.Fatal("Failed to load model catalog", "error", err)
	}

	entries := c.Models()
	if modelsProvider != "" {
		entries = c.ModelsByProvider(inktypes.Provider(modelsProvider))
	}
	for _, entry := range entries {
		fmt.Printf("%-28s %-10s context=%-7d max_output=%d\n", entry.ID, entry.Provider, entry.ContextWindow, entry.MaxOutputTokens)
	}
}

// renderMarkdown pretty-prints a reply for the terminal, falling back
// to the raw text when the renderer cannot be built.
func renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
