// Package pipeline bundles a selection into a tar container and encrypts it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/raoulx24/sql-archiver/internal/batch"
	"github.com/raoulx24/sql-archiver/internal/catalog"
	"github.com/raoulx24/sql-archiver/internal/fs"
	"github.com/raoulx24/sql-archiver/internal/logging"
)

// Stage names the step that failed.
type Stage string

const (
	StageContainer Stage = "container"
	StageEncrypt   Stage = "encrypt"
	StageCleanup   Stage = "cleanup"
)

// Error is a failed pipeline step.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline %s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StageOf returns the failed stage of a pipeline error, or "".
func StageOf(err error) Stage {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// FileEncryptor turns a plaintext file into an encrypted one.
// *aescrypt.Encryptor satisfies it.
type FileEncryptor interface {
	EncryptFile(ctx context.Context, srcPath, dstPath string) error
}

// EncryptorFactory builds the encryptor for a run. It is called only after
// the container exists, so a missing passphrase fails the encrypt stage.
type EncryptorFactory func() (FileEncryptor, error)

type Pipeline struct {
	fs           fs.FS
	newEncryptor EncryptorFactory
	log          logging.Logger
}

func New(filesystem fs.FS, newEncryptor EncryptorFactory, log logging.Logger) *Pipeline {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Pipeline{fs: filesystem, newEncryptor: newEncryptor, log: log}
}

// Run builds b.TarPath from records, encrypts it to b.ArchivePath and
// removes b.TarPath. On failure the returned error is an *Error; a
// plaintext container may be left behind when encryption or removal fails.
func (p *Pipeline) Run(ctx context.Context, b batch.Batch, records []catalog.Record) error {
	p.log.Info("generating archive", "container", b.TarPath, "files", len(records))

	if err := buildContainer(ctx, b.TarPath, records); err != nil {
		return &Error{Stage: StageContainer, Path: b.TarPath, Err: err}
	}

	enc, err := p.newEncryptor()
	if err != nil {
		return &Error{Stage: StageEncrypt, Path: b.ArchivePath, Err: err}
	}
	if err := enc.EncryptFile(ctx, b.TarPath, b.ArchivePath); err != nil {
		return &Error{Stage: StageEncrypt, Path: b.ArchivePath, Err: err}
	}

	if err := p.fs.Remove(b.TarPath); err != nil {
		return &Error{Stage: StageCleanup, Path: b.TarPath, Err: err}
	}

	p.log.Info("archive completed", "archive", b.ArchivePath)
	return nil
}
