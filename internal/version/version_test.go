package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	assert.Equal(t, Version+" ("+Revision+")", Short())
	assert.True(t, strings.HasPrefix(ShortWithApp(), "dsmanager "))
	assert.Contains(t, Detailed(), "/")
	assert.True(t, strings.HasPrefix(DetailedWithApp(), AppName+" "+Version))
}

func TestApplyBuildInfo(t *testing.T) {
	tests := []struct {
		name                    string
		version, revision, date string
		mainVersion             string
		settings                map[string]string
		wantVersion, wantRev    string
		wantDate                string
	}{
		{
			name:        "dev build takes vcs data",
			version:     devVersion,
			revision:    "HEAD",
			mainVersion: "v1.4.0",
			settings: map[string]string{
				"vcs.revision": "abc123",
				"vcs.modified": "true",
				"vcs.time":     "2025-03-01T10:00:00Z",
			},
			wantVersion: "1.4.0",
			wantRev:     "abc123-dirty",
			wantDate:    "2025-03-01T10:00:00Z",
		},
		{
			name:        "devel main version is ignored",
			version:     devVersion,
			revision:    "HEAD",
			mainVersion: "(devel)",
			settings:    map[string]string{},
			wantVersion: devVersion,
			wantRev:     "HEAD",
		},
		{
			name:        "ldflags win",
			version:     "2.0.0",
			revision:    "deadbeef",
			date:        "release",
			mainVersion: "v9.9.9",
			settings:    map[string]string{"vcs.revision": "abc", "vcs.time": "2025-03-01T10:00:00Z"},
			wantVersion: "2.0.0",
			wantRev:     "deadbeef",
			wantDate:    "release",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, r, d := Version, Revision, BuildDate
			t.Cleanup(func() { Version, Revision, BuildDate = v, r, d })

			Version, Revision, BuildDate = tt.version, tt.revision, tt.date
			applyBuildInfo(tt.mainVersion, tt.settings)

			assert.Equal(t, tt.wantVersion, Version)
			assert.Equal(t, tt.wantRev, Revision)
			assert.Equal(t, tt.wantDate, BuildDate)
		})
	}
}
