// Package loader reads API documents from files or URLs into the generic
// tree the extractor works on.
package loader

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-getter"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v4"

	"github.com/tiranuom/intrig/internal/errdefs"
	"github.com/tiranuom/intrig/internal/logger"
	"github.com/tiranuom/intrig/internal/model"
)

type SourceType string

const (
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// Source locates one API document.
type Source struct {
	Name string
	Type SourceType
	File string
	URL  string
}

// Location returns the file path or URL the source reads from.
func (s Source) Location() string {
	if s.Type == SourceURL {
		return s.URL
	}
	return s.File
}

type Result struct {
	Raw model.RawDocument
	// Version is the openapi or swagger marker of the document.
	Version  string
	Title    string
	Warnings []string
	RawData  []byte
}

// Loader reads documents whose version starts with one of its accepted
// prefixes. Relative file sources resolve against its base directory.
type Loader struct {
	versions []string
	baseDir  string
	log      *zap.SugaredLogger
}

func New(baseDir string, log *zap.SugaredLogger, versions ...string) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{versions: versions, baseDir: baseDir, log: log}
}

// Versions returns the accepted version prefixes.
func (l *Loader) Versions() []string {
	return l.versions
}

func (l *Loader) Load(ctx context.Context, src Source) (*Result, error) {
	data, basePath, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}

	result, err := Parse(data, basePath)
	if err != nil {
		return nil, err
	}
	if !l.accepts(result.Version) {
		return nil, &errdefs.UnrecognizedDocumentError{
			Reason: fmt.Sprintf("version %s is not one of %s", result.Version, strings.Join(l.versions, ", ")),
		}
	}
	for _, w := range result.Warnings {
		l.log.Warnw("document warning", logger.FieldSource, src.Name, logger.FieldWarning, w)
	}
	return result, nil
}

func (l *Loader) accepts(version string) bool {
	if len(l.versions) == 0 {
		return true
	}
	for _, prefix := range l.versions {
		if strings.HasPrefix(version, prefix) {
			return true
		}
	}
	return false
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, string, error) {
	switch src.Type {
	case SourceFile, "":
		p := src.File
		if p == "" {
			return nil, "", errors.Newf("source %s has no file", src.Name)
		}
		if !filepath.IsAbs(p) && l.baseDir != "" {
			p = filepath.Join(l.baseDir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, "", errors.Wrap(err, "reading spec file")
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, "", errors.Wrap(err, "resolving absolute path")
		}
		return data, filepath.Dir(abs), nil
	case SourceURL:
		data, err := l.fetch(ctx, src)
		return data, "", err
	default:
		return nil, "", errors.Newf("source %s: unknown source type %q", src.Name, src.Type)
	}
}

// fetch downloads a URL source into a temp directory with go-getter.
func (l *Loader) fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.Newf("source %s has no url", src.Name)
	}

	tempDir, err := os.MkdirTemp("", "intrig-source-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating temp directory")
	}
	defer os.RemoveAll(tempDir)

	name := path.Base(strings.SplitN(src.URL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "document"
	}
	dst := filepath.Join(tempDir, name)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     src.URL,
		Dst:     dst,
		Pwd:     l.baseDir,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}
	l.log.Debugw("fetching source", logger.FieldSource, src.Name, logger.FieldPath, src.URL)
	if err := client.Get(); err != nil {
		return nil, errors.Wrapf(err, "fetching %s", src.URL)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Wrap(err, "reading fetched document")
	}
	return data, nil
}

// Parse decodes a YAML or JSON document. libopenapi reads the same bytes to
// report the version and model warnings; its model is not kept.
func Parse(data []byte, basePath string) (*Result, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	raw, ok := model.NormalizeKeys(tree).(map[string]any)
	if !ok {
		return nil, &errdefs.UnrecognizedDocumentError{Reason: "document root is not a mapping"}
	}

	result := &Result{
		Raw:     model.RawDocument(raw),
		Version: model.RawDocument(raw).VersionMarker(),
		RawData: data,
	}
	if result.Version == "" {
		return nil, &errdefs.UnrecognizedDocumentError{Reason: "no openapi or swagger version"}
	}
	if info, ok := raw["info"].(map[string]any); ok {
		result.Title, _ = info["title"].(string)
	}

	inspect(result, basePath)
	return result, nil
}

// inspect builds the libopenapi model to collect warnings about the document.
func inspect(result *Result, basePath string) {
	config := &datamodel.DocumentConfiguration{
		BasePath:            basePath,
		AllowFileReferences: basePath != "",
	}
	doc, err := libopenapi.NewDocumentWithConfiguration(result.RawData, config)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("document model unavailable: %v", err))
		return
	}

	version := doc.GetVersion()
	switch {
	case strings.HasPrefix(version, "3."):
		m, err := doc.BuildV3Model()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("document model: %v", err))
		}
		if m != nil && m.Model.Info != nil && m.Model.Info.Title != "" {
			result.Title = m.Model.Info.Title
		}
	case strings.HasPrefix(version, "2."):
		m, err := doc.BuildV2Model()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("document model: %v", err))
		}
		if m != nil && m.Model.Info != nil && m.Model.Info.Title != "" {
			result.Title = m.Model.Info.Title
		}
	}
}
