package cvr

import (
	"archive/zip"
	"context"
	"io"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"dvsorder/domain/core"
	"dvsorder/internal"
	"dvsorder/ports"
)

// JSONZipSource reads a zipped JSON CVR export. The archive carries election
// and tabulator manifests plus one CvrExport*.json member per export chunk;
// the tabulator manifest lets each batch be keyed with its scanner family.
type JSONZipSource struct {
	path string
	log  *internal.Logger
}

// NewJSONZipSource creates a reader for a zipped JSON CVR export.
func NewJSONZipSource(path string, log *internal.Logger) *JSONZipSource {
	return &JSONZipSource{path: path, log: log.Tagged("cvr")}
}

func (s *JSONZipSource) Name() string { return s.path }

// Read walks the archive, emitting one batch group per CvrExport member.
func (s *JSONZipSource) Read(ctx context.Context, emit func(core.BatchGroup) error) error {
	zr, err := zip.OpenReader(s.path)
	if err != nil {
		return core.NewMalformedExportError(s.path, err.Error())
	}
	defer zr.Close()

	if err := s.logEventManifest(&zr.Reader); err != nil {
		return err
	}
	models, err := s.tabulatorModels(&zr.Reader)
	if err != nil {
		return err
	}

	for _, member := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := path.Base(member.Name)
		if !strings.HasPrefix(base, "CvrExport") || !strings.HasSuffix(base, ".json") {
			continue
		}
		s.log.Debug("%s: reading member %s", s.path, member.Name)
		group, err := s.parseExportMember(member, models)
		if err != nil {
			return err
		}
		if err := emit(group); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONZipSource) logEventManifest(zr *zip.Reader) error {
	raw, err := readMember(zr, "ElectionEventManifest.json")
	if err != nil {
		return core.NewMalformedExportError(s.path, err.Error())
	}
	s.log.Info("%s: description=%q version=%q", s.path,
		gjson.GetBytes(raw, "List.0.Description").String(),
		gjson.GetBytes(raw, "Version").String())
	return nil
}

// tabulatorModels maps tabulator ids to their manifest-reported type and
// logs how many tabulators are of an affected family.
func (s *JSONZipSource) tabulatorModels(zr *zip.Reader) (map[int]core.ScannerModel, error) {
	raw, err := readMember(zr, "TabulatorManifest.json")
	if err != nil {
		return nil, core.NewMalformedExportError(s.path, err.Error())
	}
	models := make(map[int]core.ScannerModel)
	affected := 0
	list := gjson.GetBytes(raw, "List")
	list.ForEach(func(_, tab gjson.Result) bool {
		model := core.ScannerModel(tab.Get("Type").String())
		models[int(tab.Get("Id").Int())] = model
		if model.Known() {
			affected++
		}
		return true
	})
	s.log.Info("%s: %d of %d tabulators are vulnerable models", s.path, affected, len(models))
	return models, nil
}

func (s *JSONZipSource) parseExportMember(member *zip.File, models map[int]core.ScannerModel) (core.BatchGroup, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, core.NewMalformedExportError(member.Name, err.Error())
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, core.NewMalformedExportError(member.Name, err.Error())
	}

	group := core.BatchGroup{}
	sessions := gjson.GetBytes(raw, "Sessions")
	sessions.ForEach(func(_, session gjson.Result) bool {
		tab := int(session.Get("TabulatorId").Int())
		key := core.BatchKey{
			Tabulator: tab,
			Batch:     int(session.Get("BatchId").Int()),
			Model:     models[tab],
		}
		rec := session.Get("RecordId")
		if rec.String() == "X" {
			// Sanitized export: the record id was redacted upstream.
			s.log.Warn("%s: skipping sanitized record in %s", member.Name, key)
			if _, ok := group[key]; !ok {
				group[key] = nil
			}
			return true
		}
		group.Add(key, core.Identifier(rec.Int()))
		return true
	})
	return group, nil
}

func readMember(zr *zip.Reader, name string) ([]byte, error) {
	rc, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var _ ports.BatchSource = (*JSONZipSource)(nil)
