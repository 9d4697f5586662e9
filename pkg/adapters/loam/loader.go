package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts the Loam library to the pdasim DefinitionLoader interface.
// Each markdown document is one automaton: frontmatter carries the rules and
// the body becomes the description.
type Loader struct {
	Repo *loam.TypedRepository[BlueprintMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[BlueprintMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return New(loam.NewTypedRepository[BlueprintMetadata](repo)), nil
}

// Load retrieves the automaton whose ID (frontmatter id, or file name) matches id.
func (l *Loader) Load(ctx context.Context, id string) (*domain.Blueprint, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	docID, ok := index[trimExtension(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
	}

	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return buildBlueprint(doc.ID, doc.Data, doc.Content)
}

// List lists the IDs of all automata in the repository.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// index maps normalized IDs to Loam document IDs.
func (l *Loader) index(ctx context.Context) (map[string]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		if hidden(doc.ID) {
			continue
		}
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
	}
	return seen, nil
}

func buildBlueprint(docID string, meta BlueprintMetadata, content string) (*domain.Blueprint, error) {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}

	rules, err := stringList(meta.Rules, true)
	if err != nil {
		return nil, fmt.Errorf("%s: rules: %w", docID, err)
	}
	final, err := stringList(meta.Final, false)
	if err != nil {
		return nil, fmt.Errorf("%s: final: %w", docID, err)
	}
	examples, err := decodeExamples(meta.Examples)
	if err != nil {
		return nil, fmt.Errorf("%s: examples: %w", docID, err)
	}

	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}

	return &domain.Blueprint{
		ID:          trimExtension(rawID),
		Title:       meta.Title,
		Description: description,
		Rules:       rules,
		Final:       final,
		Examples:    examples,
	}, nil
}

// stringList accepts a YAML list or a scalar. With splitLines, a scalar block
// is split into one entry per non-blank line.
func stringList(raw any, splitLines bool) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if !splitLines {
			return []string{strings.TrimSpace(v)}, nil
		}
		var out []string
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string entry, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", raw)
	}
}

func decodeExamples(raw []any) ([]domain.Example, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]domain.Example, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, domain.Example{Input: v})
		case map[string]any, map[any]any:
			var ex domain.Example
			if err := mapstructure.Decode(v, &ex); err != nil {
				return nil, fmt.Errorf("failed to decode example: %w", err)
			}
			out = append(out, ex)
		default:
			return nil, fmt.Errorf("invalid example type: %T", v)
		}
	}
	return out, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// hidden reports whether a document lives under a dot directory, such as stored sessions.
func hidden(docID string) bool {
	for _, part := range strings.Split(filepath.ToSlash(docID), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if hidden(evt.ID) {
					continue
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
