package format

import (
	"encoding/json"
	"os"

	"barcache/internal/model"
)

// JSONCodec stores a partition as an indented JSON array.
type JSONCodec struct{}

func (JSONCodec) Extension() string { return "json" }

func (JSONCodec) Save(bars []model.Bar, path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	werr := enc.Encode(bars)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return replaceFile(tmp, path, werr)
}

func (JSONCodec) Load(path string) ([]model.Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bars []model.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}
