package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Post", KeyPost, "hello-world", Post("hello-world")},
		{"Path", KeyPath, "/tmp/x.md", Path("/tmp/x.md")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Hash", KeyHash, "abc123", Hash("abc123")},
		{"Category", KeyCategory, "quarkus", Category("quarkus")},
		{"Author", KeyAuthor, "jdoe", Author("jdoe")},
		{"Branch", KeyBranch, "gh-pages", Branch("gh-pages")},
		{"Bucket", KeyBucket, "blog-site", Bucket("blog-site")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.attrKey, tc.attr.Key)
			require.Equal(t, tc.attrVal, tc.attr.Value.String())
		})
	}
}

func TestErrorHelper(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
