package docgentemplate

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/docgen"
)

func TestPongo2Executor_ExecuteTemplate(t *testing.T) {
	executor, err := NewPongo2Executor()
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if err := executor.Parse("document", "{{ title }}|{{ body|safe }}"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	buf := &bytes.Buffer{}
	data := TemplateData{Title: "Runbook", Body: template.HTML("<p>hi</p>")}
	if err := executor.ExecuteTemplate(buf, "document", data); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := buf.String(); got != "Runbook|<p>hi</p>" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestPongo2Executor_MissingTemplate(t *testing.T) {
	executor, err := NewPongo2Executor()
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	buf := &bytes.Buffer{}
	execErr := executor.ExecuteTemplate(buf, "missing", nil)
	if execErr == nil {
		t.Fatalf("expected error")
	}
	if docgen.KindFromError(execErr) != docgen.KindNotFound {
		t.Fatalf("expected not_found, got %v", docgen.KindFromError(execErr))
	}
}

func TestPongo2Executor_InvalidTemplate(t *testing.T) {
	executor, err := NewPongo2Executor()
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	parseErr := executor.Parse("broken", "{% if %}")
	if parseErr == nil {
		t.Fatalf("expected error")
	}
	if docgen.KindFromError(parseErr) != docgen.KindValidation {
		t.Fatalf("expected validation error, got %v", docgen.KindFromError(parseErr))
	}
}

func TestPongo2Executor_MapContext(t *testing.T) {
	executor, err := NewPongo2Executor()
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if err := executor.Parse("greeting", "hello {{ name }}"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := executor.ExecuteTemplate(buf, "greeting", map[string]any{"name": "ada"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := buf.String(); got != "hello ada" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestPongo2Executor_ToJSONFilter(t *testing.T) {
	executor, err := NewPongo2Executor()
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	if err := executor.Parse("payload", "{{ data|to_json }}"); err != nil {
		t.Fatalf("parse: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := executor.ExecuteTemplate(buf, "payload", map[string]any{"data": map[string]any{"count": 2}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := buf.String(); got != `{"count":2}` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestDefaultExecutor_DocumentLayout(t *testing.T) {
	executor, err := DefaultExecutor()
	if err != nil {
		t.Fatalf("default executor: %v", err)
	}

	buf := &bytes.Buffer{}
	data := TemplateData{
		Title:     "Operations Runbook",
		Theme:     "midnight",
		Body:      template.HTML("<p>backup steps</p>"),
		Generated: "2024-03-01T10:30:00Z",
	}
	if err := executor.ExecuteTemplate(buf, DefaultTemplateName, data); err != nil {
		t.Fatalf("execute: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>Operations Runbook</title>") {
		t.Fatalf("missing title: %q", out)
	}
	if !strings.Contains(out, `class="theme-midnight"`) {
		t.Fatalf("missing theme class: %q", out)
	}
	if !strings.Contains(out, "<p>backup steps</p>") {
		t.Fatalf("missing body: %q", out)
	}
	if !strings.Contains(out, "2024-03-01T10:30:00Z") {
		t.Fatalf("missing generated timestamp: %q", out)
	}
}

func TestDefaultExecutor_ThemeFallback(t *testing.T) {
	executor, err := DefaultExecutor()
	if err != nil {
		t.Fatalf("default executor: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := executor.ExecuteTemplate(buf, DefaultTemplateName, TemplateData{Title: "Notes"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `class="theme-default"`) {
		t.Fatalf("missing default theme class: %q", buf.String())
	}
}
