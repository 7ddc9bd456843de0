package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/storefront/internal/migration"
)

type fakeRunner struct {
	res migration.Result
	err error
}

func (f fakeRunner) Run(context.Context, []migration.Mapping) (migration.Result, error) {
	return f.res, f.err
}

type fakeCounter struct{ calls int }

func (f *fakeCounter) Count(context.Context, string) (int, error) {
	f.calls++
	return 3, nil
}

func TestMigrate_ExitCodes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mappings := []migration.Mapping{{Collection: "products", Field: "main_image", Folder: "products/main"}}

	t.Run("aborted run still prints the summary", func(t *testing.T) {
		var out bytes.Buffer
		counter := &fakeCounter{}
		r := fakeRunner{res: migration.Result{Migrated: 2}, err: errors.New("media store unreachable")}

		code := migrate(context.Background(), &out, logger, r, counter, mappings)
		assert.Equal(t, 1, code)
		assert.Contains(t, out.String(), "migrated=2")
		assert.Zero(t, counter.calls)
	})

	t.Run("entity failures", func(t *testing.T) {
		var out bytes.Buffer
		r := fakeRunner{res: migration.Result{Failures: []migration.Failure{{Collection: "products", EntityID: 7, Err: errors.New("boom")}}}}

		code := migrate(context.Background(), &out, logger, r, &fakeCounter{}, mappings)
		assert.Equal(t, 1, code)
		assert.Contains(t, out.String(), "failed  products 7: boom")
	})

	t.Run("clean run", func(t *testing.T) {
		var out bytes.Buffer
		code := migrate(context.Background(), &out, logger, fakeRunner{res: migration.Result{Migrated: 1}}, &fakeCounter{}, mappings)
		assert.Equal(t, 0, code)
		assert.Contains(t, out.String(), "products/main")
		assert.Contains(t, out.String(), "3 objects")
	})
}
