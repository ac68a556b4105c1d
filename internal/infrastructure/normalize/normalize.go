// Package normalize turns fetched article markup into clean text: a
// best-effort repair of mis-decoded characters followed by conversion
// to lightweight structured text. Failures never lose content; the
// input passes through instead.
package normalize

import (
	"log/slog"
	"strings"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

type Service struct {
	logger *slog.Logger
}

var _ ports.Normalizer = (*Service)(nil)

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (n *Service) Normalize(raw domain.RawContent) string {
	text, repaired := RepairMojibake(raw.HTML)
	if repaired {
		n.logger.Debug("repaired mis-decoded text", "id", raw.ID)
	}

	converted, err := htmlToText(text)
	if err != nil || strings.TrimSpace(converted) == "" {
		if err != nil {
			n.logger.Warn("markup conversion failed, passing content through",
				"id", raw.ID, "error", err)
		} else {
			n.logger.Warn("markup conversion produced no text, passing content through",
				"id", raw.ID)
		}
		converted = text
	}

	return CleanControl(converted)
}
