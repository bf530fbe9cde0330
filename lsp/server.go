// Package lsp serves calculator documents over the Language Server Protocol
// and publishes their diagnostics as they change.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/dhamidi/combi/internal/calc"
	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "combi"

var log = commonlog.GetLogger("combi.lsp")

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu        sync.Mutex
	documents map[protocol.DocumentUri]string
}

func NewServer(version string) *Server {
	ls := &Server{
		version:   version,
		documents: make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.documents, params.TextDocument.URI)
	ls.mu.Unlock()

	publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}
	ls.mu.Lock()
	text, ok := ls.documents[params.TextDocument.URI]
	ls.mu.Unlock()
	if ok {
		ls.update(ctx, params.TextDocument.URI, text)
	}
	return nil
}

func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	ls.documents[uri] = text
	ls.mu.Unlock()

	diagnostics := Diagnostics(uri, text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	publish(ctx, uri, diagnostics)
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Diagnostics parses a calculator document and converts its syntax errors.
// A document without syntax errors is evaluated and a runtime error is
// reported as a warning.
func Diagnostics(uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	src := span.New(text, span.WithName(uriToPath(uri)), span.WithLineEnding(span.Universal))
	prog, errs, err := calc.Parse(src)
	if perr, ok := err.(*parse.Error); ok {
		errs = append(errs, perr)
	}

	diagnostics := []protocol.Diagnostic{}
	for _, e := range errs {
		diagnostics = append(diagnostics, toDiagnostic(e, protocol.DiagnosticSeverityError))
	}
	if len(diagnostics) > 0 {
		return diagnostics
	}

	if _, err := calc.Eval(prog, calc.Env{}); err != nil {
		if perr, ok := err.(*parse.Error); ok {
			diagnostics = append(diagnostics, toDiagnostic(perr, protocol.DiagnosticSeverityWarning))
		}
	}
	return diagnostics
}

func toDiagnostic(e *parse.Error, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	d := e.DiagnosticWithCauses()
	message := d.Message
	if d.Label != "" {
		message += ": " + d.Label
	}
	for _, note := range d.Notes {
		message += "\nnote: " + note
	}
	source := lsName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: position(d.Span.Source(), d.Span.Start),
			End:   position(d.Span.Source(), d.Span.End),
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// position converts to a protocol position, whose character offset counts
// UTF-16 code units.
func position(src span.Source, p span.Pos) protocol.Position {
	line, _ := src.LineText(p.Page.Line)
	units, col := 0, 0
	for _, r := range line {
		if col == p.Page.Column {
			break
		}
		units += utf16.RuneLen(r)
		col++
	}
	units += p.Page.Column - col
	return protocol.Position{
		Line:      protocol.UInteger(p.Page.Line),
		Character: protocol.UInteger(units),
	}
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
