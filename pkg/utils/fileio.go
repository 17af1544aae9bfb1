//
// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
//

package utils

import (
	"io"
	"os"
	"path/filepath"
)

// Fio is a pointer to the shared FileIO implementation
var Fio FileIO = &OSFileIO{}

// FileIO is an interface for filesystem methods
type FileIO interface {
	CreatePath(path string) error
	Delete(path string) error
	OpenRead(path string) (io.ReadCloser, error)
	OpenWriteOrCreate(path string) (io.WriteCloser, error)
}

// OSFileIO implements fileIO backed by default os methods
type OSFileIO struct{}

// CreatePath creates a directory and all parents if required.
// This implementation is backed by os.MkdirAll.
func (OSFileIO) CreatePath(path string) error { return os.MkdirAll(path, 0755) }

// Delete deletes a single file or directory with all contained elements.
// This implementation is backed by os.RemoveAll.
func (OSFileIO) Delete(path string) error { return os.RemoveAll(path) }

// OpenRead opens a file for reading, following symbolic links.
func (OSFileIO) OpenRead(path string) (io.ReadCloser, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	return os.Open(resolved)
}

// OpenWriteOrCreate opens a file for write access. The given file is created in case it does not exist and truncated
// otherwise.
func (OSFileIO) OpenWriteOrCreate(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
}

// ReadFile reads the whole content of the file at path.
func ReadFile(path string) ([]byte, error) {
	file, err := Fio.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// WriteFile replaces the content of the file at path with data, creating missing parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := Fio.CreatePath(dir); err != nil {
			return err
		}
	}
	file, err := Fio.OpenWriteOrCreate(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
