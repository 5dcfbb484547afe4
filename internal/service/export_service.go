package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/apperr"
	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// exportBatchSize is the number of articles assembled per round of queries
const exportBatchSize = 50

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos     *repository.Repositories
	assembler *Assembler
	log       zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, assembler *Assembler, log zerolog.Logger) *exportService {
	return &exportService{
		repos:     repos,
		assembler: assembler,
		log:       log.With().Str("service", "export").Logger(),
	}
}

// ExportArticles writes every article, published or not, as NDJSON or as
// a JSON array. Articles are assembled in batches and flushed after each
// one when w supports it. It returns the number of articles written.
func (s *exportService) ExportArticles(ctx context.Context, w io.Writer, format string) (int, error) {
	if format == "" {
		format = FormatNDJSON
	}
	if format != FormatNDJSON && format != FormatJSON {
		return 0, apperr.Validation("unsupported format: %s", format)
	}

	log := loggerFor(ctx, &s.log)
	log.Info().Str("format", format).Msg("Starting articles export")

	headers, err := s.repos.Article.List(ctx, true)
	if err != nil {
		return 0, err
	}

	flusher, _ := w.(http.Flusher)
	count := 0

	if format == FormatJSON {
		if _, err := io.WriteString(w, "["); err != nil {
			return 0, err
		}
	}

	for start := 0; start < len(headers); start += exportBatchSize {
		if err := ctx.Err(); err != nil {
			return count, apperr.Transient(err, "export canceled")
		}

		end := min(start+exportBatchSize, len(headers))
		batch, err := s.assembler.AssembleHeaders(ctx, s.repos, headers[start:end])
		if err != nil {
			return count, err
		}

		if err := writeArticles(w, format, batch, count == 0); err != nil {
			return count, err
		}
		count += len(batch)

		if flusher != nil {
			flusher.Flush()
		}
	}

	if format == FormatJSON {
		if _, err := io.WriteString(w, "]"); err != nil {
			return count, err
		}
	}

	log.Info().Int("count", count).Msg("Articles export completed")
	return count, nil
}

func writeArticles(w io.Writer, format string, articles []models.NestedArticle, first bool) error {
	for _, article := range articles {
		data, err := json.Marshal(article)
		if err != nil {
			return apperr.Internal(err, "encode article")
		}

		switch format {
		case FormatNDJSON:
			data = append(data, '\n')
		case FormatJSON:
			if !first {
				data = append([]byte(","), data...)
			}
			first = false
		}

		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// ExportContentType returns the media type of an export format
func ExportContentType(format string) string {
	if format == FormatJSON {
		return "application/json"
	}
	return "application/x-ndjson"
}
