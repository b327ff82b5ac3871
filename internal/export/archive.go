package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/transparencia-labs/saldo/internal/model"
)

// Standard subdirectories of the audit archive.
const (
	historyDir = "historicos"
	paymentDir = "pagamentos"
)

// Archive persists the portal's raw payloads per commitment so a
// balance can be audited later without re-querying the API. Records
// are written exactly as the portal returned them.
type Archive struct {
	logger *slog.Logger
	root   string
}

// NewArchive creates an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{
		root:   dir,
		logger: slog.Default().With("component", "archive"),
	}
}

// WriteHistory stores a commitment's full ledger history, keyed by
// item sequential. Empty histories are skipped so the archive only
// holds commitments that produced data.
func (a *Archive) WriteHistory(commitmentCode string, history map[int][]model.LedgerEvent) error {
	if len(history) == 0 {
		a.logger.Debug("Skipping empty history", "commitment", commitmentCode)
		return nil
	}

	payload := make(map[string][]json.RawMessage, len(history))
	for seq, events := range history {
		raws := make([]json.RawMessage, 0, len(events))
		for _, ev := range events {
			raws = append(raws, ev.Raw)
		}
		payload[strconv.Itoa(seq)] = raws
	}

	path := filepath.Join(a.root, historyDir, commitmentCode+"_historico.json")
	return a.writeJSON(path, payload)
}

// WriteRelatedDocuments stores the settlement and payment documents
// discovered for a commitment. Empty listings are skipped.
func (a *Archive) WriteRelatedDocuments(commitmentCode string, docs []model.RelatedDocument) error {
	if len(docs) == 0 {
		a.logger.Debug("Skipping empty related-document listing", "commitment", commitmentCode)
		return nil
	}

	raws := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raws = append(raws, doc.Raw)
	}

	path := filepath.Join(a.root, paymentDir, commitmentCode+"_documentos_relacionados.json")
	return a.writeJSON(path, raws)
}

func (a *Archive) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	a.logger.Debug("Archived payload", "path", path)
	return nil
}
