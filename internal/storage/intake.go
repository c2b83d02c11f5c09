// Package storage accepts uploaded files and hands back the public path they
// are served under.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Intake stores an uploaded file and returns a reference to it.
type Intake interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

// Disk writes uploads into a directory under random UUID names.
type Disk struct {
	dir          string
	publicPrefix string
}

func NewDisk(dir, publicPrefix string) *Disk {
	if !strings.HasSuffix(publicPrefix, "/") {
		publicPrefix += "/"
	}
	return &Disk{dir: dir, publicPrefix: publicPrefix}
}

// Dir is the directory files are written to.
func (d *Disk) Dir() string {
	return d.dir
}

// PublicPrefix is the URL path files are served under.
func (d *Disk) PublicPrefix() string {
	return d.publicPrefix
}

func (d *Disk) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + extension(header.Filename)
	dst, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("save file: %w", err)
	}

	log.Debug("file stored", "name", name, "original", header.Filename, "bytes", n)
	return d.publicPrefix + name, nil
}

// extension keeps the client's extension, lowercased, if it looks sane.
func extension(filename string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
