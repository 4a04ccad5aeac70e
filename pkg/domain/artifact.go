package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the timestamp part of an artifact name. It sorts
// lexicographically in chronological order.
const TimestampLayout = "2006-01-02_15-04-05"

const ArtifactExt = ".zip"

type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindDaily:
		return KindDaily, nil
	case KindWeekly:
		return KindWeekly, nil
	case KindMonthly:
		return KindMonthly, nil
	}

	return "", fmt.Errorf("unknown backup kind: %q", s)
}

type Generation int

const (
	GenerationWorking Generation = iota
	GenerationArchive
)

func (g Generation) String() string {
	if g == GenerationArchive {
		return "archive"
	}
	return "working"
}

// Artifact is a single backup zip. Its generation and survival are decided
// exclusively by the rotation manager; everything else only reads it.
type Artifact struct {
	Key  string
	Kind Kind

	CreatedAt time.Time

	// Seq orders artifacts created within the same second: the lower
	// sequence number is considered older.
	Seq int

	Size       int64
	LocalPath  string
	Generation Generation

	// Undersized marks an artifact whose zip came out below the configured
	// minimum size. It is reported, never silently dropped.
	Undersized bool
}

// ArtifactKey builds the identity of an artifact. It doubles as the remote
// object key, which makes uploads idempotent per artifact.
func ArtifactKey(prefix string, kind Kind, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s", prefix, kind, ts.UTC().Format(TimestampLayout))
}

func (a Artifact) FileName() string {
	return a.Key + ArtifactExt
}

// Older reports whether a precedes b in rotation order.
func (a Artifact) Older(b Artifact) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Seq < b.Seq
}

// ParseArtifactName recovers kind and timestamp from an artifact file name
// produced with ArtifactKey. The directory layout plus these names are the
// rotation manager's entire persistent state.
func ParseArtifactName(prefix, name string) (Kind, time.Time, bool) {
	name = strings.TrimSuffix(name, ArtifactExt)

	rest, found := strings.CutPrefix(name, prefix+"_")
	if !found {
		return "", time.Time{}, false
	}

	kindStr, tsStr, found := strings.Cut(rest, "_")
	if !found {
		return "", time.Time{}, false
	}

	kind, err := ParseKind(kindStr)
	if err != nil {
		return "", time.Time{}, false
	}

	ts, err := time.ParseInLocation(TimestampLayout, tsStr, time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}

	return kind, ts, true
}
