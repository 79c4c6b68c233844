package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// SnapshotSource provides read access to the stored per-source snapshots.
// The Postgres game store satisfies it implicitly.
type SnapshotSource interface {
	LoadSource(ctx context.Context, source domain.Source) (domain.SourceData, error)
}

// Archiver uploads the raw per-source snapshots to cold storage as JSONL,
// one object per source per day. Archives are write-only from the scanner's
// side; nothing in the hot path reads them back.
type Archiver struct {
	writer domain.BlobWriter
	games  SnapshotSource
}

// NewArchiver creates an Archiver reading from games and writing via writer.
func NewArchiver(writer domain.BlobWriter, games SnapshotSource) *Archiver {
	return &Archiver{
		writer: writer,
		games:  games,
	}
}

// ArchiveSnapshots uploads both sources' current snapshots, keyed by the
// given day. It returns the total number of games archived.
func (a *Archiver) ArchiveSnapshots(ctx context.Context, day time.Time) (int64, error) {
	var total int64

	for _, source := range []domain.Source{domain.SourceBookie, domain.SourceExchange} {
		data, err := a.games.LoadSource(ctx, source)
		if err != nil {
			return total, fmt.Errorf("s3blob: archive %s snapshot query: %w", source, err)
		}

		var games []domain.RawGame
		for _, leagueGames := range data {
			games = append(games, leagueGames...)
		}
		if len(games) == 0 {
			continue
		}

		buf, err := marshalJSONL(games)
		if err != nil {
			return total, fmt.Errorf("s3blob: archive %s snapshot marshal: %w", source, err)
		}

		path := snapshotPath(source, day)
		if err := a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize); err != nil {
			return total, fmt.Errorf("s3blob: archive %s snapshot upload: %w", source, err)
		}

		total += int64(len(games))
	}

	return total, nil
}

// snapshotPath builds the S3 key for one source's snapshot, partitioned by
// day:
//
//	snapshots/bookie/2026-08-28.jsonl
//	snapshots/exchange/2026-08-28.jsonl
func snapshotPath(source domain.Source, day time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.jsonl", source, day.Format("2006-01-02"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
