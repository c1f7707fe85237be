package account

import (
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/netlogin/api/schemas"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []schemas.Credential
		wantErr error
	}{
		{
			name: "comma separated",
			raw:  "alice:pw1,bob:pw2",
			want: []schemas.Credential{{User: "alice", Pass: "pw1"}, {User: "bob", Pass: "pw2"}},
		},
		{
			name: "semicolon and whitespace",
			raw:  "  alice : pw1 ;  bob:pw2  ",
			want: []schemas.Credential{{User: "alice", Pass: "pw1"}, {User: "bob", Pass: "pw2"}},
		},
		{
			name: "mixed separators keep order",
			raw:  "c:3;a:1,b:2",
			want: []schemas.Credential{{User: "c", Pass: "3"}, {User: "a", Pass: "1"}, {User: "b", Pass: "2"}},
		},
		{
			name: "password containing colon",
			raw:  "alice:pa:ss",
			want: []schemas.Credential{{User: "alice", Pass: "pa:ss"}},
		},
		{
			name: "malformed pairs dropped",
			raw:  "alice:pw1,nocolon,:onlypass,onlyuser:, ,bob:pw2",
			want: []schemas.Credential{{User: "alice", Pass: "pw1"}, {User: "bob", Pass: "pw2"}},
		},
		{
			name:    "only separators and blanks",
			raw:     "  ,   :  ",
			wantErr: ErrNoValidAccounts,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: ErrNoAccounts,
		},
		{
			name:    "whitespace",
			raw:     " \t\n",
			wantErr: ErrNoAccounts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	creds := []schemas.Credential{{User: "a", Pass: "1"}, {User: "b", Pass: "2"}}
	assert.Equal(t, []string{"a", "b"}, Users(creds))
	assert.Empty(t, Users(nil))
}

// FuzzParse checks that arbitrary input never panics and that every returned
// credential has non-empty trimmed fields.
func FuzzParse(f *testing.F) {
	f.Add([]byte("alice:pw1,bob:pw2"))
	f.Add([]byte("  ,   :  "))
	f.Add([]byte(";;a:b:c;"))

	f.Fuzz(func(t *testing.T, data []byte) {
		fz := fuzz.NewConsumer(data)
		raw, err := fz.GetString()
		if err != nil {
			raw = string(data)
		}

		creds, err := Parse(raw)
		if err != nil {
			assert.Empty(t, creds)
			return
		}
		require.NotEmpty(t, creds)
		for _, c := range creds {
			assert.NotEmpty(t, c.User)
			assert.NotEmpty(t, c.Pass)
			assert.Equal(t, strings.TrimSpace(c.User), c.User)
			assert.Equal(t, strings.TrimSpace(c.Pass), c.Pass)
			assert.NotContains(t, c.User, ",")
			assert.NotContains(t, c.Pass, ";")
		}
	})
}
