package httpconn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		params      types.Params
		want        string
		wantNoParse bool
	}{
		{
			name: "no params",
			path: "/contacts/v1/contact",
			want: "https://api.test/contacts/v1/contact",
		},
		{
			name:   "placeholder substituted and escaped",
			path:   "/contacts/v1/contact/email/:contact_email/profile",
			params: types.Params{"contact_email": "a b@x.io"},
			want:   "https://api.test/contacts/v1/contact/email/a%20b@x.io/profile",
		},
		{
			name:   "batch prefix stripped and slice repeated",
			path:   "/contacts/v1/contact/vids/batch",
			params: types.Params{"batch_vid": []int64{3, 1, 2}},
			want:   "https://api.test/contacts/v1/contact/vids/batch?vid=3&vid=1&vid=2",
		},
		{
			name:   "string slice repeated",
			path:   "/contacts/v1/contact/emails/batch",
			params: types.Params{"batch_email": []string{"a@x.io", "b@x.io"}},
			want:   "https://api.test/contacts/v1/contact/emails/batch?email=a%40x.io&email=b%40x.io",
		},
		{
			name:        "no_parse consumed",
			path:        "/contacts/v1/contact/merge-vids/:contact_id",
			params:      types.Params{"contact_id": int64(7), types.ParamNoParse: true},
			want:        "https://api.test/contacts/v1/contact/merge-vids/7",
			wantNoParse: true,
		},
		{
			name:   "query params sorted",
			path:   "/contacts/v1/lists/all/contacts/all",
			params: types.Params{"count": 100, "vidOffset": int64(55), "property": []string{"email", "firstname"}},
			want:   "https://api.test/contacts/v1/lists/all/contacts/all?count=100&property=email&property=firstname&vidOffset=55",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, noParse, err := buildURL("https://api.test", tt.path, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantNoParse, noParse)
		})
	}
}

func TestBuildURLMissingPlaceholder(t *testing.T) {
	_, _, err := buildURL("https://api.test", "/contacts/v1/contact/vid/:contact_id/profile", types.Params{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidParams))
	assert.Contains(t, err.Error(), "contact_id")
}

func TestQueryValues(t *testing.T) {
	assert.Nil(t, queryValues(nil))
	assert.Equal(t, []string{"x"}, queryValues("x"))
	assert.Equal(t, []string{"1", "2"}, queryValues([]int{1, 2}))
	assert.Equal(t, []string{"a", "3"}, queryValues([]any{"a", 3}))
	assert.Equal(t, []string{"true"}, queryValues(true))
}
