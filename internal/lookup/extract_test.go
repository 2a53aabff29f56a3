package lookup

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedExtractor(now time.Time) *Extractor {
	return &Extractor{now: func() time.Time { return now }}
}

func TestExtractor_FromRegistry(t *testing.T) {
	payload := map[string]any{
		"ldhName": "example.com",
		"entities": []any{
			map[string]any{
				"roles": []any{"registrar"},
				"vcardArray": []any{
					"vcard",
					[]any{
						[]any{"version", map[string]any{}, "text", "4.0"},
						[]any{"fn", map[string]any{}, "text", "Example Registrar Inc."},
					},
				},
			},
		},
		"events": []any{
			map[string]any{"eventAction": "registration", "eventDate": "1995-08-14T04:00:00Z"},
			map[string]any{"eventAction": "last changed", "eventDate": "2024-08-14T07:01:31Z"},
			map[string]any{"eventAction": "expiration", "eventDate": "2030-01-01T00:00:00Z"},
		},
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	info := fixedExtractor(now).FromRegistry(payload)

	assert.Equal(t, "Example Registrar Inc.", info.Registrar)
	require.NotNil(t, info.CreatedDate)
	assert.Equal(t, 1995, info.CreatedDate.Year())
	require.NotNil(t, info.UpdatedDate)
	require.NotNil(t, info.ExpirationDate)

	require.NotNil(t, info.DaysUntilExpiration)
	expected := int(math.Floor(info.ExpirationDate.Sub(now).Hours() / 24))
	assert.Equal(t, expected, *info.DaysUntilExpiration)
	assert.Positive(t, *info.DaysUntilExpiration)
}

func testVCard(name string) []any {
	return []any{
		"vcard",
		[]any{
			[]any{"version", map[string]any{}, "text", "4.0"},
			[]any{"fn", map[string]any{}, "text", name},
		},
	}
}

func TestExtractor_FromRegistry_RegistrarWithoutRoles(t *testing.T) {
	payload := map[string]any{
		"entities": []any{
			map[string]any{"vcardArray": testVCard("Example Registrar Inc.")},
		},
	}

	info := NewExtractor().FromRegistry(payload)

	assert.Equal(t, "Example Registrar Inc.", info.Registrar,
		"an entity with a formatted name but no roles array still identifies the registrar")
}

func TestExtractor_FromRegistry_RoleTaggedEntityWins(t *testing.T) {
	payload := map[string]any{
		"entities": []any{
			map[string]any{
				"roles":      []any{"technical"},
				"vcardArray": testVCard("Tech Contact"),
			},
			map[string]any{
				"roles":      []any{"registrar"},
				"vcardArray": testVCard("Real Registrar LLC"),
			},
		},
	}

	info := NewExtractor().FromRegistry(payload)

	assert.Equal(t, "Real Registrar LLC", info.Registrar,
		"the role-tagged entity takes precedence over earlier named entities")
}

func TestExtractor_FromRegistry_MalformedShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"entities wrong type", map[string]any{"entities": "nope"}},
		{"events wrong element type", map[string]any{"events": []any{"nope", 42}}},
		{"event with bad date", map[string]any{"events": []any{
			map[string]any{"eventAction": "expiration", "eventDate": "not-a-date"},
		}}},
		{"vcard missing fn", map[string]any{"entities": []any{
			map[string]any{"roles": []any{"registrar"}, "vcardArray": []any{"vcard", []any{}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewExtractor().FromRegistry(tt.payload)
			require.NotNil(t, info)
			assert.True(t, info.Empty())
		})
	}
}

func TestExtractor_FromText(t *testing.T) {
	body := `Domain Name: EXAMPLE.COM
   Registrar: RESERVED-Internet Assigned Numbers Authority
   Updated Date: 2024-08-14T07:01:31Z
   Creation Date: 1995-08-14T04:00:00Z
   Registry Expiry Date: 2030-08-13T04:00:00Z
   Name Server: A.IANA-SERVERS.NET
`

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	info := fixedExtractor(now).FromText(body)

	assert.Equal(t, "RESERVED-Internet Assigned Numbers Authority", info.Registrar)
	require.NotNil(t, info.CreatedDate)
	require.NotNil(t, info.UpdatedDate)
	require.NotNil(t, info.ExpirationDate)
	require.NotNil(t, info.DaysUntilExpiration)

	expected := int(math.Floor(info.ExpirationDate.Sub(now).Hours() / 24))
	assert.Equal(t, expected, *info.DaysUntilExpiration)
}

func TestExtractor_FromText_FieldVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func(t *testing.T, info *DomainInfo)
	}{
		{
			name: "expires on variant",
			body: "Expires on: 2027-03-15\n",
			want: func(t *testing.T, info *DomainInfo) {
				require.NotNil(t, info.ExpirationDate)
				assert.Equal(t, 2027, info.ExpirationDate.Year())
			},
		},
		{
			name: "created on and last updated variants",
			body: "Created on: 02-Jan-2019\nLast Updated: 2024.06.01\n",
			want: func(t *testing.T, info *DomainInfo) {
				require.NotNil(t, info.CreatedDate)
				require.NotNil(t, info.UpdatedDate)
			},
		},
		{
			name: "unparseable date dropped silently",
			body: "Expiration Date: sometime next year\nRegistrar: Foo Registrar\n",
			want: func(t *testing.T, info *DomainInfo) {
				assert.Nil(t, info.ExpirationDate)
				assert.Nil(t, info.DaysUntilExpiration)
				assert.Equal(t, "Foo Registrar", info.Registrar)
			},
		},
		{
			name: "registrar must be line anchored",
			body: "Sponsoring Registrar: Hidden Inc\n",
			want: func(t *testing.T, info *DomainInfo) {
				assert.Empty(t, info.Registrar)
			},
		},
		{
			name: "empty body",
			body: "",
			want: func(t *testing.T, info *DomainInfo) {
				assert.True(t, info.Empty())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewExtractor().FromText(tt.body)
			require.NotNil(t, info)
			tt.want(t, info)
		})
	}
}

func TestExtractor_NegativeDaysForExpiredDomain(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	info := fixedExtractor(now).FromText("Expiry Date: 2020-01-01T00:00:00Z\n")

	require.NotNil(t, info.DaysUntilExpiration)
	assert.Negative(t, *info.DaysUntilExpiration)
}

func TestPayloadText(t *testing.T) {
	assert.Equal(t, "", payloadText(nil))
	assert.Equal(t, "hello", payloadText("hello"))
	assert.Equal(t, "raw", payloadText([]byte("raw")))
	assert.Equal(t, `{"a":1}`, payloadText(map[string]any{"a": 1}))
}
