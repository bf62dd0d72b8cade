package sheet

import (
	"context"
	"fmt"
	"os"

	"caxcast/internal/domain"
)

// File lee el export CSV desde un archivo local, implementa
// ports.DealProvider. Útil para corridas offline y para tests.
type File struct {
	path string
}

// NewFile crea un provider sobre el archivo dado.
func NewFile(path string) *File {
	return &File{path: path}
}

// FetchDeals parsea el archivo CSV completo.
func (f *File) FetchDeals(_ context.Context) ([]domain.Deal, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("sheet.File: open %q: %w", f.path, err)
	}
	defer fh.Close()
	return ParseDeals(fh)
}
