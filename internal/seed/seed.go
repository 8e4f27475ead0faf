// Package seed loads content fixtures written in YAML and creates the records
// through the admin service, so fixtures pass the same validation as API
// writes.
//
// A fixture maps resource names to lists of records:
//
//	beliefs:
//	  - name: Salvation
//	    detail: By grace through faith
//	contact-info:
//	  - address: 1 Church Road
//	    email: hello@example.org
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/services"
)

// Actor is recorded as the owner of idempotency keys written by a seed run.
const Actor = "seed"

// Fixture is a parsed content file.
type Fixture map[string][]map[string]any

// Creator is the subset of services.AdminService used by Apply.
type Creator interface {
	Resources() []string
	Create(ctx context.Context, actor, resource, key string, payload []byte) (domain.Record, bool, error)
}

// Result counts what a run did.
type Result struct {
	Created  int
	Replayed int // already created by an earlier run
	Skipped  int // contact info already present
}

// Load parses a fixture. Unknown top-level keys are reported by Apply.
func Load(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Apply creates every record in f, resource by resource in name order.
// Each record carries an idempotency key derived from its position, so
// re-running the same file within the idempotency TTL creates nothing new.
func Apply(ctx context.Context, c Creator, f Fixture) (Result, error) {
	var res Result
	known := c.Resources()
	for name := range f {
		if !slices.Contains(known, name) {
			return res, fmt.Errorf("%w: %q", services.ErrUnknownResource, name)
		}
	}

	for _, name := range known {
		items := f[name]
		for i, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				return res, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			key := fmt.Sprintf("seed:%s:%d", name, i)
			_, replayed, err := c.Create(ctx, Actor, name, key, payload)
			switch {
			case errors.Is(err, services.ErrContactInfoExists):
				res.Skipped++
			case err != nil:
				return res, fmt.Errorf("%s[%d]: %w", name, i, err)
			case replayed:
				res.Replayed++
			default:
				res.Created++
			}
		}
		if len(items) > 0 {
			log.Info().Str("resource", name).Int("records", len(items)).Msg("seeded")
		}
	}
	return res, nil
}

// File loads path and applies it.
func File(ctx context.Context, c Creator, path string) (Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer fh.Close()

	f, err := Load(fh)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, c, f)
}
