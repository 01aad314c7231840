package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportVersion is the current portable document format version.
const ExportVersion = "1"

// ExportDocument is the portable import/export file format.
type ExportDocument struct {
	Version string `json:"version"`
	Mode    Mode   `json:"mode"`
	Config  Config `json:"config"`
}

// ImportResult is the discriminated outcome of an import; malformed input
// never mutates state and never throws.
type ImportResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Porter serializes the live config to portable documents and back.
type Porter struct {
	store     *ConfigStore
	session   *EditSession
	validator *DocumentValidator
	telemetry Telemetry
}

// PorterOptions configures a Porter.
type PorterOptions struct {
	Store     *ConfigStore
	Session   *EditSession
	Validator *DocumentValidator
	Telemetry Telemetry
}

// NewPorter builds a porter for the store's mode.
func NewPorter(opts PorterOptions) *Porter {
	if opts.Validator == nil {
		opts.Validator = NewDocumentValidator()
	}
	return &Porter{
		store:     opts.Store,
		session:   opts.Session,
		validator: opts.Validator,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Document captures the current config as a portable document.
func (p *Porter) Document() ExportDocument {
	return ExportDocument{
		Version: ExportVersion,
		Mode:    p.store.Mode(),
		Config:  p.store.Snapshot(),
	}
}

// Export writes the current config as an indented portable JSON document.
func (p *Porter) Export(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(p.Document()); err != nil {
		return fmt.Errorf("layout: export config: %w", err)
	}
	return nil
}

// Import parses and validates a portable document and, only when the whole
// document is sound, replaces the live config and clears the edit history.
// Confirmation happens at the caller before invoking this.
func (p *Porter) Import(ctx context.Context, r io.Reader) ImportResult {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{Error: fmt.Sprintf("read import file: %v", err)}
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ImportResult{Error: fmt.Sprintf("parse import file: %v", err)}
	}
	if err := p.validator.ValidateExport(payload); err != nil {
		return ImportResult{Error: err.Error()}
	}
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ImportResult{Error: fmt.Sprintf("decode import file: %v", err)}
	}
	if doc.Version != ExportVersion {
		return ImportResult{Error: fmt.Sprintf("unsupported export version %q", doc.Version)}
	}
	if doc.Mode != p.store.Mode() {
		return ImportResult{Error: fmt.Sprintf("document targets %s mode, store is %s", doc.Mode, p.store.Mode())}
	}

	p.store.Replace(ctx, doc.Config, "import")
	if p.session != nil {
		p.session.ClearHistory()
	}
	p.telemetry.Record(ctx, "layout.config.import", map[string]any{"mode": string(doc.Mode)})
	return ImportResult{Success: true}
}
