// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package records_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/DeepselSystems/relkit/records"
	"github.com/DeepselSystems/relkit/version"
)

const pyproject = `[build-system]
requires = ["setuptools"]

[project]
name = "deepsel"
version = "0.1.0"
description = "Database manager for SQLAlchemy models"
`

const initPy = `"""deepsel package."""

__version__ = "0.1.0"
`

func newSynchronizer(fs afero.Fs) *records.Synchronizer {
	s := records.NewSynchronizer(
		records.Canonical{Path: "pyproject.toml", Key: "version"},
		[]records.Mirror{{Path: "deepsel/__init__.py", Identifier: "__version__"}},
	)
	s.SetFS(fs)
	return s
}

func writeFixture(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCurrent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "pyproject.toml", pyproject)
	writeFixture(t, fs, "deepsel/__init__.py", initPy)
	s := newSynchronizer(fs)

	v, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if v.String() != "0.1.0" {
		t.Errorf("Current = %s, want 0.1.0", v)
	}

	// idempotent without an intervening bump
	again, err := s.Current()
	if err != nil {
		t.Fatalf("Current (again): %v", err)
	}
	if again != v {
		t.Errorf("Current not idempotent: %s then %s", v, again)
	}
}

func TestBumpMinorScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "pyproject.toml", pyproject)
	writeFixture(t, fs, "deepsel/__init__.py", initPy)
	s := newSynchronizer(fs)

	old, next, err := s.Bump(version.AxisMinor)
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if old.String() != "0.1.0" || next.String() != "0.2.0" {
		t.Errorf("Bump = %s -> %s, want 0.1.0 -> 0.2.0", old, next)
	}

	canon, err := s.Current()
	if err != nil {
		t.Fatalf("Current after bump: %v", err)
	}
	if canon.String() != "0.2.0" {
		t.Errorf("canonical after bump = %s, want 0.2.0", canon)
	}
	if got := readFile(t, fs, "deepsel/__init__.py"); got != "\"\"\"deepsel package.\"\"\"\n\n__version__ = \"0.2.0\"\n" {
		t.Errorf("mirror after bump:\n%s", got)
	}
}

func TestBumpAxes(t *testing.T) {
	tests := []struct {
		axis version.Axis
		want string
	}{
		{version.AxisMajor, "2.0.0"},
		{version.AxisMinor, "1.3.0"},
		{version.AxisPatch, "1.2.4"},
	}
	for _, tt := range tests {
		t.Run(string(tt.axis), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFixture(t, fs, "pyproject.toml", "version = \"1.2.3\"\n")
			s := records.NewSynchronizer(records.Canonical{Path: "pyproject.toml", Key: "version"}, nil)
			s.SetFS(fs)

			_, next, err := s.Bump(tt.axis)
			if err != nil {
				t.Fatalf("Bump(%s): %v", tt.axis, err)
			}
			if next.String() != tt.want {
				t.Errorf("Bump(%s) = %s, want %s", tt.axis, next, tt.want)
			}
		})
	}
}

func TestBumpPreservesSurroundingBytes(t *testing.T) {
	// CRLF line endings, indentation, a trailing comment, and a second
	// assignment that must not be touched.
	content := "[project]\r\n  version = \"1.0.0\"  # keep in sync\r\nother = \"1.0.0\"\r\nversion = \"9.9.9\"\r\n"
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "pyproject.toml", content)
	s := records.NewSynchronizer(records.Canonical{Path: "pyproject.toml", Key: "version"}, nil)
	s.SetFS(fs)

	_, _, err := s.Bump(version.AxisPatch)
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	want := "[project]\r\n  version = \"1.0.1\"  # keep in sync\r\nother = \"1.0.0\"\r\nversion = \"9.9.9\"\r\n"
	if got := readFile(t, fs, "pyproject.toml"); got != want {
		t.Errorf("rewritten file:\n%q\nwant:\n%q", got, want)
	}
}

func TestMalformedCanonical(t *testing.T) {
	malformed := "version = \"1.2\"\n"
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "pyproject.toml", malformed)
	writeFixture(t, fs, "deepsel/__init__.py", initPy)
	s := newSynchronizer(fs)

	if _, err := s.Current(); err == nil {
		t.Error("Current: expected error for two-component version")
	} else {
		var mv *records.ErrMalformedVersion
		if !errors.As(err, &mv) {
			t.Errorf("Current: expected ErrMalformedVersion, got %T: %v", err, err)
		}
	}

	_, _, err := s.Bump(version.AxisPatch)
	var mv *records.ErrMalformedVersion
	if !errors.As(err, &mv) {
		t.Fatalf("Bump: expected ErrMalformedVersion, got %T: %v", err, err)
	}
	if mv.Value != "1.2" {
		t.Errorf("ErrMalformedVersion.Value = %q, want %q", mv.Value, "1.2")
	}

	// no file reflects any change
	if got := readFile(t, fs, "pyproject.toml"); got != malformed {
		t.Errorf("canonical changed after failed bump:\n%s", got)
	}
	if got := readFile(t, fs, "deepsel/__init__.py"); got != initPy {
		t.Errorf("mirror changed after failed bump:\n%s", got)
	}
}

func TestMissingMirrorAssignment(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFixture(t, fs, "pyproject.toml", pyproject)
	writeFixture(t, fs, "deepsel/__init__.py", "\"\"\"no version here\"\"\"\n")
	s := newSynchronizer(fs)

	_, _, err := s.Bump(version.AxisPatch)
	var wf *records.ErrWriteFile
	if !errors.As(err, &wf) {
		t.Fatalf("Bump: expected ErrWriteFile, got %T: %v", err, err)
	}
	if wf.Op != "find" {
		t.Errorf("ErrWriteFile.Op = %q, want %q", wf.Op, "find")
	}
	if got := readFile(t, fs, "pyproject.toml"); got != pyproject {
		t.Errorf("canonical changed after failed bump:\n%s", got)
	}
}

// failingFs rejects writes to a single path; reads pass through.
type failingFs struct {
	afero.Fs
	denyPath string
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.denyPath && flag&os.O_WRONLY != 0 {
		return nil, fmt.Errorf("permission denied")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestUnwritableMirrorRollsBackCanonical(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFixture(t, mem, "pyproject.toml", pyproject)
	writeFixture(t, mem, "deepsel/__init__.py", initPy)
	fs := &failingFs{Fs: mem, denyPath: "deepsel/__init__.py"}
	s := newSynchronizer(fs)

	_, _, err := s.Bump(version.AxisMinor)
	var wf *records.ErrWriteFile
	if !errors.As(err, &wf) {
		t.Fatalf("Bump: expected ErrWriteFile, got %T: %v", err, err)
	}
	if wf.Op != "write" || wf.Path != "deepsel/__init__.py" {
		t.Errorf("ErrWriteFile = %s %s, want write deepsel/__init__.py", wf.Op, wf.Path)
	}

	// canonical was restored, mirror never changed
	if got := readFile(t, mem, "pyproject.toml"); got != pyproject {
		t.Errorf("canonical not rolled back after failed mirror write:\n%s", got)
	}
	if got := readFile(t, mem, "deepsel/__init__.py"); got != initPy {
		t.Errorf("mirror changed despite failed write:\n%s", got)
	}
}

func TestMissingCanonicalFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSynchronizer(fs)

	if _, err := s.Current(); err == nil {
		t.Error("Current: expected error for missing canonical file")
	}
	var wf *records.ErrWriteFile
	_, _, err := s.Bump(version.AxisPatch)
	if !errors.As(err, &wf) {
		t.Fatalf("Bump: expected ErrWriteFile, got %T: %v", err, err)
	}
	if wf.Op != "read" {
		t.Errorf("ErrWriteFile.Op = %q, want %q", wf.Op, "read")
	}
}
