package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mamatimer/internal/modules/history/domain"
	historyout "mamatimer/internal/modules/history/port/out"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/markdown"
)

// MarkdownNoteStore writes day notes under <root>/history/YYYY/MM. Only the
// managed block and the exported frontmatter keys are rewritten; anything the
// user added survives re-export.
type MarkdownNoteStore struct {
	root  string
	loc   *time.Location
	block markdown.Block
}

func NewMarkdownNoteStore(root string, loc *time.Location) historyout.NoteStore {
	if loc == nil {
		loc = time.Local
	}
	return &MarkdownNoteStore{root: root, loc: loc, block: markdown.NewBlock(domain.BlockName)}
}

func (s *MarkdownNoteStore) Path(key string) string {
	return filepath.Join(s.root, "history", key[:4], key[5:7], key+".md")
}

func (s *MarkdownNoteStore) WriteDay(_ context.Context, day domain.Day, exportedAt time.Time) (string, bool, error) {
	if len(day.Key) != len("2006-01-02") {
		return "", false, fmt.Errorf("%w: day key %q", apperrors.ErrInvalidInput, day.Key)
	}
	path := s.Path(day.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("%w: create history dir: %w", apperrors.ErrStorageWrite, err)
	}

	note := markdown.Note{Meta: map[string]any{}}
	created := true
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		created = false
		parsed, parseErr := markdown.Parse(string(existing))
		if parseErr != nil {
			return "", false, fmt.Errorf("%w: parse %s: %w", apperrors.ErrStorageRead, path, parseErr)
		}
		note = parsed
	case errors.Is(err, os.ErrNotExist):
	default:
		return "", false, fmt.Errorf("%w: read %s: %w", apperrors.ErrStorageRead, path, err)
	}

	note.Merge(day.Frontmatter(exportedAt))
	note.Body = s.block.Replace(note.Body, day.Body(s.loc))
	rendered, err := note.Render()
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", false, fmt.Errorf("%w: write day note: %w", apperrors.ErrStorageWrite, err)
	}
	return path, created, nil
}
