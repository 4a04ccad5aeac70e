package rotation

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/filebutler/filebutler/pkg/domain"
)

// scanDir rebuilds the artifact set of one generation purely from a
// directory listing plus filename metadata. There is no separate index to
// drift out of sync: the directory is the state.
func scanDir(dir, prefix string, gen domain.Generation) ([]domain.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var artifacts []domain.Artifact

	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}

		kind, ts, ok := domain.ParseArtifactName(prefix, entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		artifacts = append(artifacts, domain.Artifact{
			Key:        strings.TrimSuffix(entry.Name(), domain.ArtifactExt),
			Kind:       kind,
			CreatedAt:  ts,
			Size:       info.Size(),
			LocalPath:  filepath.Join(dir, entry.Name()),
			Generation: gen,
		})
	}

	// Oldest first. Filename order breaks timestamp ties and stands in for
	// the insertion sequence, which the names encode deterministically.
	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].CreatedAt.Equal(artifacts[j].CreatedAt) {
			return artifacts[i].CreatedAt.Before(artifacts[j].CreatedAt)
		}
		return artifacts[i].Key < artifacts[j].Key
	})

	for i := range artifacts {
		artifacts[i].Seq = i
	}

	return artifacts, nil
}
