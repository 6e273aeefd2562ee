package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"depdoctor/internal/util/jsonutil"
)

// PromptSaver is a PromptHook that appends each prompt, its input and the
// raw answer to <Dir>/<stage>.txt, and keeps the last answer per stage in
// <Dir>/<stage>.raw.json. Write failures are logged, never returned.
type PromptSaver struct {
	Dir    string
	Logger *slog.Logger

	mu sync.Mutex
}

func (p *PromptSaver) Before(_ context.Context, stage, prompt string, input any) {
	var buf bytes.Buffer
	buf.WriteString("==== ")
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString(" ====\n")
	buf.WriteString(prompt)
	buf.WriteString("\n[INPUT JSON]\n")
	jb, err := jsonutil.MarshalNoEscapeIndent(input, "", "  ")
	if err != nil {
		jb = []byte(`"<unencodable input>"`)
	}
	buf.Write(jb)
	buf.WriteString("\n\n")
	p.append(stage, buf.Bytes())
}

func (p *PromptSaver) After(_ context.Context, stage string, raw json.RawMessage, err error) {
	var buf bytes.Buffer
	buf.WriteString("[RESPONSE]\n")
	if err != nil {
		buf.WriteString("ERROR: " + err.Error() + "\n\n")
	} else {
		buf.Write(raw)
		buf.WriteString("\n\n")
	}
	p.append(stage, buf.Bytes())
	if err == nil {
		p.write(filepath.Join(p.Dir, stage+".raw.json"), raw)
	}
}

func (p *PromptSaver) append(stage string, b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		p.logger().Warn("prompt transcript", "dir", p.Dir, "error", err)
		return
	}
	path := filepath.Join(p.Dir, stage+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		p.logger().Warn("prompt transcript", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		p.logger().Warn("prompt transcript", "path", path, "error", err)
	}
}

func (p *PromptSaver) write(path string, b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		p.logger().Warn("prompt transcript", "path", path, "error", err)
	}
}

func (p *PromptSaver) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
