package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicReadPolicy(t *testing.T) {
	t.Parallel()

	t.Run("renders scoped public read statement", func(t *testing.T) {
		t.Parallel()

		policy, err := PublicReadPolicy("resumes", "*/pictures/*", "/*/previews/*", "*/resumes/*")
		require.NoError(t, err)

		var doc struct {
			Version   string
			Statement []struct {
				Sid       string
				Effect    string
				Action    []string
				Principal struct{ AWS []string }
				Resource  []string
			}
		}
		require.NoError(t, json.Unmarshal([]byte(policy), &doc))

		require.Equal(t, "2012-10-17", doc.Version)
		require.Len(t, doc.Statement, 1)
		st := doc.Statement[0]
		require.Equal(t, "Allow", st.Effect)
		require.Equal(t, []string{"s3:GetObject"}, st.Action)
		require.Equal(t, []string{"*"}, st.Principal.AWS)
		require.Equal(t, []string{
			"arn:aws:s3:::resumes/*/pictures/*",
			"arn:aws:s3:::resumes/*/previews/*",
			"arn:aws:s3:::resumes/*/resumes/*",
		}, st.Resource)
	})

	t.Run("requires bucket and patterns", func(t *testing.T) {
		t.Parallel()

		_, err := PublicReadPolicy("", "*/pictures/*")
		require.ErrorIs(t, err, ErrInvalidConfig)

		_, err = PublicReadPolicy("resumes")
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
