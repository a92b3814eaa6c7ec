package main

import (
	"flag"
	"fmt"
	"os"

	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/VictosVertex/asp-lsp/internal/logging"
	"github.com/VictosVertex/asp-lsp/internal/lsp"
	"github.com/VictosVertex/asp-lsp/internal/server"
)

const (
	version = "0.1.0"
)

var (
	tcpMode    bool
	tcpPort    int
	logLevel   string
	logFile    string
	configFile string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, notice, warn, error (default from config)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.StringVar(&configFile, "config", "", "Config file path (default: .asp-lsp.yaml in the working or home directory)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "asp-lsp version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: asp-lsp [options]\n\n")
	fmt.Fprintf(os.Stderr, "Language Server Protocol implementation for clingo answer set programs\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("asp-lsp version %s\n", version)
		os.Exit(0)
	}

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "asp-lsp: %v\n", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = config.LogLevel
	}
	if err := logging.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "asp-lsp: %v\n", err)
		os.Exit(1)
	}
	log := logging.Get("main")

	lsp.Version = version
	lsp.SetServer(server.New(config))

	handler := protocol.Handler{
		Initialize:  lsp.Initialize,
		Initialized: lsp.Initialized,
		Shutdown:    lsp.Shutdown,
		SetTrace:    lsp.SetTrace,

		TextDocumentDidOpen:   lsp.DidOpen,
		TextDocumentDidChange: lsp.DidChange,
		TextDocumentDidClose:  lsp.DidClose,

		TextDocumentCompletion:              lsp.Completion,
		TextDocumentHover:                   lsp.Hover,
		TextDocumentSignatureHelp:           lsp.SignatureHelp,
		TextDocumentDefinition:              lsp.Definition,
		TextDocumentReferences:              lsp.References,
		TextDocumentDocumentSymbol:          lsp.DocumentSymbol,
		TextDocumentRename:                  lsp.Rename,
		TextDocumentPrepareRename:           lsp.PrepareRename,
		TextDocumentSemanticTokensFull:      lsp.SemanticTokensFull,
		TextDocumentSemanticTokensFullDelta: lsp.SemanticTokensFullDelta,

		WorkspaceSymbol:                    lsp.WorkspaceSymbol,
		WorkspaceDidChangeConfiguration:    lsp.DidChangeConfiguration,
		WorkspaceExecuteCommand:            lsp.ExecuteCommand,
		WorkspaceDidChangeWorkspaceFolders: lsp.DidChangeWorkspaceFolders,
	}

	glspServer := glspserver.NewServer(&handler, "asp-lsp", false)

	if tcpMode {
		address := fmt.Sprintf("127.0.0.1:%d", tcpPort)
		log.Noticef("asp-lsp %s listening on %s", version, address)
		if err := glspServer.RunTCP(address); err != nil {
			log.Criticalf("TCP server error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Noticef("asp-lsp %s on stdio", version)
	if err := glspServer.RunStdio(); err != nil {
		log.Criticalf("STDIO server error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the -config file, or the first config file found in the
// working or home directory. Without one the defaults apply.
func loadConfig() (*server.Config, error) {
	path := configFile
	if path == "" {
		wd, err := os.Getwd()
		if err == nil {
			path = server.FindConfigFile(wd)
		}
	}
	if path == "" {
		return server.DefaultConfig(), nil
	}
	return server.LoadConfig(path)
}
