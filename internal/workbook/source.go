package workbook

import "github.com/sells-group/review-cli/internal/model"

// Source is a workbook holding one dataset.
type Source interface {
	Name() string
	Load() (*model.Dataset, error)
}

// FileSource reads a dataset from an xlsx file on disk.
type FileSource struct {
	Path    string
	Options ReadOptions
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Load() (*model.Dataset, error) {
	return ReadDataset(s.Path, s.Options)
}

// BytesSource reads a dataset from an uploaded xlsx file.
type BytesSource struct {
	Filename string
	Data     []byte
	Options  ReadOptions
}

func (s BytesSource) Name() string { return s.Filename }

func (s BytesSource) Load() (*model.Dataset, error) {
	return ReadDatasetBytes(s.Data, s.Options)
}
