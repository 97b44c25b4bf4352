package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/voxmill/article2video/internal/models"
)

// ErrCompositionIO wraps serialization and round-trip failures of the
// composition file.
var ErrCompositionIO = errors.New("composition io failed")

// Store persists compositions as JSON. Asset paths are written relative to
// the asset root so a saved composition stays valid on a machine with a
// differently located asset directory.
type Store struct {
	assetRoot string
}

func NewStore(assetRoot string) *Store {
	return &Store{assetRoot: assetRoot}
}

func (s *Store) Save(comp *models.Composition, path string) error {
	rel, err := s.relativize(comp)
	if err != nil {
		return errors.Wrapf(ErrCompositionIO, "save %s: %v", path, err)
	}

	data, err := json.MarshalIndent(rel, "", "  ")
	if err != nil {
		return errors.Wrapf(ErrCompositionIO, "save %s: %v", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(ErrCompositionIO, "save %s: %v", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(ErrCompositionIO, "save %s: %v", path, err)
	}
	return nil
}

func (s *Store) Load(path string) (*models.Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrCompositionIO, "load %s: %v", path, err)
	}

	var comp models.Composition
	if err := json.Unmarshal(data, &comp); err != nil {
		return nil, errors.Wrapf(ErrCompositionIO, "load %s: %v", path, err)
	}

	comp.SlidePaths = s.absolutize(comp.SlidePaths)
	comp.AudioPaths = s.absolutize(comp.AudioPaths)
	if comp.Phrases == nil {
		comp.Phrases = []models.Phrase{}
	}
	if comp.SlidePaths == nil {
		comp.SlidePaths = []string{}
	}
	if comp.AudioPaths == nil {
		comp.AudioPaths = []string{}
	}
	return &comp, nil
}

// relativize copies the composition with asset paths rewritten relative to
// the asset root. Empty entries (missing assets) stay empty.
func (s *Store) relativize(comp *models.Composition) (*models.Composition, error) {
	out := &models.Composition{
		Title:      comp.Title,
		Phrases:    append([]models.Phrase{}, comp.Phrases...),
		SlidePaths: make([]string, len(comp.SlidePaths)),
		AudioPaths: make([]string, len(comp.AudioPaths)),
	}
	for i, p := range comp.SlidePaths {
		rel, err := s.relPath(p)
		if err != nil {
			return nil, err
		}
		out.SlidePaths[i] = rel
	}
	for i, p := range comp.AudioPaths {
		rel, err := s.relPath(p)
		if err != nil {
			return nil, err
		}
		out.AudioPaths[i] = rel
	}
	return out, nil
}

func (s *Store) relPath(p string) (string, error) {
	if p == "" || s.assetRoot == "" || !filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Rel(s.assetRoot, p)
}

func (s *Store) absolutize(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "" || s.assetRoot == "" || filepath.IsAbs(p) {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(s.assetRoot, p)
	}
	return out
}
