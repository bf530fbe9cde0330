package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func recorder(got *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*got = append(*got, notification{method, params.(protocol.PublishDiagnosticsParams)})
		},
	}
}

func TestDiagnostics(t *testing.T) {
	diags := Diagnostics("file:///tmp/a.calc", "x = 1;\ny = (x +;\n")
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "combi", *d.Source)
	assert.Equal(t, "unexpected token: expected expression, found ';'\nnote: in parenthesized expression at (1:8-1:9, bytes 15-16)", d.Message)
	assert.Equal(t, protocol.Position{Line: 1, Character: 8}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 9}, d.Range.End)
}

func TestDiagnosticsRuntimeWarning(t *testing.T) {
	diags := Diagnostics("file:///tmp/a.calc", "x = 2;\nx + y")
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, "undefined variable y: not assigned before use", diags[0].Message)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, diags[0].Range.Start)

	assert.Empty(t, Diagnostics("untitled:1", "x = 2; x * x"))
}

func TestDiagnosticsCountUTF16(t *testing.T) {
	diags := Diagnostics("untitled:1", "𝄞 + 1")
	require.Len(t, diags, 1)
	assert.Equal(t, "unrecognized token: symbol not recognized", diags[0].Message)
	assert.Equal(t, protocol.UInteger(0), diags[0].Range.Start.Character)
	assert.Equal(t, protocol.UInteger(2), diags[0].Range.End.Character)
}

func TestDocumentLifecycle(t *testing.T) {
	ls := NewServer("test")
	var got []notification
	ctx := recorder(&got)
	uri := protocol.DocumentUri("file:///tmp/doc.calc")

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "a = ;"},
	}))
	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "a = 1;"}},
	}))
	require.NoError(t, ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))

	require.Len(t, got, 4)
	for _, n := range got {
		assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, n.method)
		assert.Equal(t, uri, n.params.URI)
	}
	assert.Len(t, got[0].params.Diagnostics, 1)
	assert.Empty(t, got[1].params.Diagnostics)
	assert.Empty(t, got[2].params.Diagnostics)
	assert.NotNil(t, got[3].params.Diagnostics)
	assert.Empty(t, got[3].params.Diagnostics)
	assert.Empty(t, ls.documents)
}

func TestURIToPath(t *testing.T) {
	assert.Equal(t, "/tmp/a b.calc", uriToPath("file:///tmp/a%20b.calc"))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
}
