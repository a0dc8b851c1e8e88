package optimization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const (
	KeySystemConfig     = "system_config"
	KeyABTestingConfig  = "ab_testing_config"
	KeyPromptVersioning = "prompt_versioning_config"

	fieldProducts       = "products"
	fieldABTests        = "abTests"
	fieldPromptVersions = "promptVersions"
)

// fields is a decoded document. Top-level keys the engine does not own stay as
// raw JSON and are written back untouched.
type fields map[string]json.RawMessage

func (f fields) decode(name string, out interface{}) error {
	raw, ok := f[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %q: %w", name, err)
	}
	return nil
}

func (f fields) encode(name string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", name, err)
	}
	f[name] = raw
	return nil
}

func parseFields(doc *Document) (fields, error) {
	out := fields{}
	if doc == nil || len(doc.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(doc.Body, &out); err != nil {
		return nil, fmt.Errorf("parse document %q: %w", doc.Key, err)
	}
	if out == nil {
		out = fields{}
	}
	return out, nil
}

type documentEditor struct {
	store       ConfigStore
	maxAttempts int
	log         *logger.Logger
}

// load returns the document under key, creating an empty one when create is set.
// A nil document with nil error means the key is absent and create was false.
func (e documentEditor) load(ctx context.Context, key string, create bool) (*Document, fields, error) {
	doc, err := e.store.GetDocument(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}
	if doc == nil && create {
		doc, err = e.store.CreateDocument(ctx, key, json.RawMessage(`{}`))
		if errors.Is(err, ErrDocumentExists) {
			doc, err = e.store.GetDocument(ctx, key)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", key, err)
		}
	}
	if doc == nil {
		return nil, nil, nil
	}
	f, err := parseFields(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, f, nil
}

// update runs a version-checked read-modify-write. mutate may run more than once
// and reports whether it changed anything; unchanged documents are not written.
func (e documentEditor) update(ctx context.Context, key string, create bool, mutate func(f fields) (bool, error)) error {
	attempts := e.maxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		doc, f, err := e.load(ctx, key, create)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		changed, err := mutate(f)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		body, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		_, err = e.store.ReplaceDocument(ctx, key, body, doc.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("replace %s: %w", key, err)
		}
		e.log.Warn("config document changed underneath, retrying", "key", key, "attempt", attempt, "version", doc.Version)
	}
	return fmt.Errorf("replace %s after %d attempts: %w", key, attempts, ErrVersionConflict)
}
