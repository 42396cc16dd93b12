package format

import (
	"github.com/parquet-go/parquet-go"

	"barcache/internal/model"
)

// ParquetCodec stores a partition as Parquet.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string { return "parquet" }

func (ParquetCodec) Save(bars []model.Bar, path string) error {
	tmp := path + ".tmp"
	return replaceFile(tmp, path, parquet.WriteFile(tmp, bars))
}

func (ParquetCodec) Load(path string) ([]model.Bar, error) {
	return parquet.ReadFile[model.Bar](path)
}
