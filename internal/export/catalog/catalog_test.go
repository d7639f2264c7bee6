package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		GuestList, GuestAddOns, Itineraries, Announcements, Messages,
		ModuleResponses, ActivityLog, GuestUploads, EventMedia, AnalyticsReport,
	}, c.IDs())
}

func TestDefault_TabularBundlesDeclareColumns(t *testing.T) {
	for _, b := range Default().All() {
		t.Run(b.ID, func(t *testing.T) {
			assert.NotEmpty(t, b.Name)
			assert.NotEmpty(t, b.Category)
			if b.Kind != KindTabular {
				assert.Empty(t, b.Columns)
				return
			}
			require.NotEmpty(t, b.Columns)
			for _, c := range b.Columns {
				assert.NotEmpty(t, c.Header)
				assert.NotEmpty(t, c.Keys, c.Header)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	b, ok := c.Lookup(GuestUploads)
	require.True(t, ok)
	assert.Equal(t, KindArchive, b.Kind)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestCatalog_Select(t *testing.T) {
	c := Default()

	got := c.Select([]string{AnalyticsReport, "unknown", GuestList, AnalyticsReport})
	require.Len(t, got, 2)
	assert.Equal(t, AnalyticsReport, got[0].ID)
	assert.Equal(t, GuestList, got[1].ID)

	assert.Empty(t, c.Select(nil))
	assert.Empty(t, c.Select([]string{"a", "b"}))
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "mutated"

	b, _ := c.Lookup(all[0].ID)
	assert.Equal(t, "Guest List", b.Name)
}

func TestNew_IgnoresDuplicateIDs(t *testing.T) {
	c := New(
		BundleDescriptor{ID: "a", Name: "first"},
		BundleDescriptor{ID: "a", Name: "second"},
	)
	assert.Len(t, c.All(), 1)
	b, _ := c.Lookup("a")
	assert.Equal(t, "first", b.Name)
}

func TestOutputKind(t *testing.T) {
	assert.Equal(t, "csv", KindTabular.Extension())
	assert.Equal(t, "zip", KindArchive.Extension())
	assert.Equal(t, "pdf", KindReport.Extension())
	assert.Equal(t, "text/csv", KindTabular.ContentType())
	assert.Equal(t, "application/zip", KindArchive.ContentType())
	assert.Equal(t, "application/pdf", KindReport.ContentType())
}
