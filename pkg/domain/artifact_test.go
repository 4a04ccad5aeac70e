package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArtifactKey_RoundTrip(t *testing.T) {
	ts, _ := time.Parse(time.RFC3339, "2024-03-01T02:03:04Z")

	key := ArtifactKey("Acme_Backup", KindDaily, ts)

	assert.Equal(t, "Acme_Backup_daily_2024-03-01_02-03-04", key)

	kind, parsed, ok := ParseArtifactName("Acme_Backup", key+ArtifactExt)

	assert.True(t, ok)
	assert.Equal(t, KindDaily, kind)
	assert.True(t, parsed.Equal(ts))
}

func TestParseArtifactName_RejectsForeignFiles(t *testing.T) {
	for _, name := range []string{
		"Other_Backup_daily_2024-03-01_02-03-04.zip",
		"Acme_Backup_hourly_2024-03-01_02-03-04.zip",
		"Acme_Backup_daily_notatimestamp.zip",
		"random.zip",
	} {
		_, _, ok := ParseArtifactName("Acme_Backup", name)
		assert.False(t, ok, name)
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("Weekly")
	assert.Nil(t, err)
	assert.Equal(t, KindWeekly, kind)

	_, err = ParseKind("hourly")
	assert.NotNil(t, err)
}

func TestArtifact_Older_TieBreaksOnSeq(t *testing.T) {
	ts := time.Now()

	a := Artifact{CreatedAt: ts, Seq: 0}
	b := Artifact{CreatedAt: ts, Seq: 1}

	assert.True(t, a.Older(b))
	assert.False(t, b.Older(a))

	earlier := Artifact{CreatedAt: ts.Add(-time.Second), Seq: 5}
	assert.True(t, earlier.Older(a))
}
