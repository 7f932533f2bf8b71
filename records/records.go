// Copyright (c) 2026 Deepsel Systems. All rights reserved.

// Package records keeps a package's version string synchronized between
// the canonical record (the single authoritative file) and any mirror
// records that repeat the value as a named constant.
//
// Matching is line-oriented: the first line of the shape
//
//	name = "X.Y.Z"
//
// is the assignment for that file. Every other byte of a rewritten
// file, including its line endings, is preserved exactly.
package records

import (
	"fmt"
	"regexp"

	"github.com/spf13/afero"

	"github.com/DeepselSystems/relkit/version"
)

// Canonical identifies the authoritative version record.
type Canonical struct {
	Path string // e.g. pyproject.toml
	Key  string // e.g. version
}

// Mirror identifies a secondary file that must stay in sync with the
// canonical record.
type Mirror struct {
	Path       string // e.g. deepsel/__init__.py
	Identifier string // e.g. __version__
}

// Synchronizer reads and rewrites the canonical and mirror records.
// It is not safe for concurrent bumps of the same records; two
// simultaneous invocations are last-writer-wins.
type Synchronizer struct {
	canonical Canonical
	mirrors   []Mirror
	fs        afero.Fs
}

// NewSynchronizer creates a Synchronizer over the OS filesystem.
func NewSynchronizer(canonical Canonical, mirrors []Mirror) *Synchronizer {
	return &Synchronizer{
		canonical: canonical,
		mirrors:   mirrors,
		fs:        afero.NewOsFs(),
	}
}

// SetFS sets the filesystem for testing.
func (s *Synchronizer) SetFS(fs afero.Fs) {
	s.fs = fs
}

// target is a staged rewrite: the full file image plus the byte range
// of the quoted version value on the matched assignment line.
type target struct {
	path     string
	content  []byte
	valStart int
	valEnd   int
	value    string
}

// rewrite splices the new version into the staged file image, leaving
// all other bytes untouched.
func (t *target) rewrite(v version.Version) []byte {
	next := v.String()
	out := make([]byte, 0, len(t.content)-(t.valEnd-t.valStart)+len(next))
	out = append(out, t.content[:t.valStart]...)
	out = append(out, next...)
	out = append(out, t.content[t.valEnd:]...)
	return out
}

func assignmentPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(name) + `[ \t]*=[ \t]*"([^"\n]*)"`)
}

// stage reads a file and locates the first assignment to name.
func (s *Synchronizer) stage(path, name string) (*target, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &ErrWriteFile{Op: "read", Path: path, Err: err}
	}
	m := assignmentPattern(name).FindSubmatchIndex(content)
	if m == nil {
		return nil, &ErrWriteFile{Op: "find", Path: path, Err: fmt.Errorf("no assignment to %q", name)}
	}
	return &target{
		path:     path,
		content:  content,
		valStart: m[2],
		valEnd:   m[3],
		value:    string(content[m[2]:m[3]]),
	}, nil
}

// Current parses and returns the canonical record's version.
func (s *Synchronizer) Current() (version.Version, error) {
	t, err := s.stage(s.canonical.Path, s.canonical.Key)
	if err != nil {
		return version.Version{}, err
	}
	v, err := version.Parse(t.value)
	if err != nil {
		return version.Version{}, &ErrMalformedVersion{Path: t.path, Value: t.value, Err: err}
	}
	return v, nil
}

// Bump increments the canonical version along the given axis and
// rewrites the canonical record and every mirror to the new value.
// All targets are read and staged before any file is mutated; if a
// write fails partway, files written so far are restored from their
// staged originals. Returns the old and new versions.
func (s *Synchronizer) Bump(axis version.Axis) (old, next version.Version, err error) {
	canon, err := s.stage(s.canonical.Path, s.canonical.Key)
	if err != nil {
		return version.Version{}, version.Version{}, err
	}
	old, err = version.Parse(canon.value)
	if err != nil {
		return version.Version{}, version.Version{}, &ErrMalformedVersion{Path: canon.path, Value: canon.value, Err: err}
	}
	next = old.Bump(axis)

	targets := []*target{canon}
	for _, m := range s.mirrors {
		t, err := s.stage(m.Path, m.Identifier)
		if err != nil {
			return version.Version{}, version.Version{}, err
		}
		targets = append(targets, t)
	}

	var written []*target
	for _, t := range targets {
		if werr := afero.WriteFile(s.fs, t.path, t.rewrite(next), 0644); werr != nil {
			// best-effort restore of files already rewritten
			for _, w := range written {
				_ = afero.WriteFile(s.fs, w.path, w.content, 0644)
			}
			return version.Version{}, version.Version{}, &ErrWriteFile{Op: "write", Path: t.path, Err: werr}
		}
		written = append(written, t)
	}
	return old, next, nil
}
