package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoobzio/replica"
	"github.com/zoobzio/replica/bson"
	"github.com/zoobzio/replica/json"
	"github.com/zoobzio/replica/msgpack"
	"github.com/zoobzio/replica/yaml"
)

var formats = map[string]func() replica.Codec{
	"json":    json.New,
	"yaml":    yaml.New,
	"msgpack": msgpack.New,
	"bson":    bson.New,
}

var extensions = map[string]string{
	".json":    "json",
	".yaml":    "yaml",
	".yml":     "yaml",
	".msgpack": "msgpack",
	".mp":      "msgpack",
	".bson":    "bson",
}

// codecFor resolves a format name, falling back to the extension of path.
func codecFor(format, path string) (replica.Codec, error) {
	if format == "" {
		format = extensions[strings.ToLower(filepath.Ext(path))]
	}
	if format == "" {
		return nil, fmt.Errorf("cannot infer format of %q, set it explicitly", path)
	}
	newCodec, ok := formats[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return newCodec(), nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout when path is empty or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
