package prover

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/creachadair/atomicfile"

	"github.com/tendermint/lightivc/store"
	"github.com/tendermint/lightivc/types"
)

// HeaderFileExt is the extension of header files.
const HeaderFileExt = ".json"

// NamedHeader is a header with the name proofs of it are stored under.
type NamedHeader struct {
	Name   string
	Header types.ChainHeader
}

// Decoder decodes a header file.
type Decoder func(bz []byte) (types.ChainHeader, error)

// DecodeJSONLightBlock decodes a light block in RPC JSON form.
func DecodeJSONLightBlock(bz []byte) (types.ChainHeader, error) {
	var lb *types.LightBlock
	if err := json.Unmarshal(bz, &lb); err != nil {
		return nil, err
	}
	if lb == nil {
		return nil, types.ErrNullHeader
	}
	return lb, nil
}

// DecodeJSONExtendedHeader decodes an extended header in JSON form.
func DecodeJSONExtendedHeader(bz []byte) (types.ChainHeader, error) {
	var eh *types.ExtendedHeader
	if err := json.Unmarshal(bz, &eh); err != nil {
		return nil, err
	}
	if eh == nil {
		return nil, types.ErrNullHeader
	}
	return eh, nil
}

// DecoderFor returns the header file decoder of a strategy.
func DecoderFor(strategy string) (Decoder, error) {
	switch strategy {
	case "light":
		return DecodeJSONLightBlock, nil
	case "consensus":
		return DecodeJSONExtendedHeader, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// ReadHeaderFile reads one header file. The header is named after the file
// stem.
func ReadHeaderFile(path string, decode Decoder) (NamedHeader, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return NamedHeader{}, err
	}
	h, err := decode(bz)
	if err != nil {
		return NamedHeader{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NamedHeader{Name: name, Header: h}, nil
}

// WriteHeaderFile atomically writes v as JSON to dir/<name>.json.
func WriteHeaderFile(dir, name string, v interface{}) (string, error) {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+HeaderFileExt)
	if _, err := atomicfile.WriteAll(path, bytes.NewReader(bz), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// DirSource reads headers from a directory of files named by height, e.g.
// 100.json, 101.json. Proof files in the same directory are skipped.
type DirSource struct {
	Dir    string
	Decode Decoder
}

// Files returns the header files in numeric order of their stems.
func (s DirSource) Files() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	type numbered struct {
		n    int64
		path string
	}
	var files []numbered
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != HeaderFileExt || strings.HasSuffix(name, store.ProofFileSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, HeaderFileExt)
		n, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("header file %s is not named by a number", name)
		}
		files = append(files, numbered{n, filepath.Join(s.Dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// Headers reads every header file in order.
func (s DirSource) Headers() ([]NamedHeader, error) {
	paths, err := s.Files()
	if err != nil {
		return nil, err
	}
	headers := make([]NamedHeader, 0, len(paths))
	for _, path := range paths {
		h, err := ReadHeaderFile(path, s.Decode)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}
