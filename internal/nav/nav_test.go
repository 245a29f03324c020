package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActiveSection(t *testing.T) {
	items := Build("/map")
	require.Len(t, items, len(Main))
	for _, it := range items {
		require.Equal(t, it.Href == "/map", it.Active, it.Href)
	}
	require.True(t, Build("/pages/about")[3].Active)
	require.False(t, Build("/mapping")[1].Active)
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/pages/about")
	require.Len(t, crumbs, 3)
	require.Equal(t, "nav.home", crumbs[0].LabelKey)
	require.Equal(t, "Pages", crumbs[1].Label)
	require.Equal(t, "nav.about", crumbs[2].LabelKey)
	require.True(t, crumbs[2].Active)

	named := WithLeaf(crumbs, "About the project")
	require.Equal(t, "About the project", named[2].Label)
	require.Empty(t, named[2].LabelKey)
	require.Equal(t, "nav.about", crumbs[2].LabelKey, "input slice is not modified")

	require.Len(t, Breadcrumbs("/"), 1)
}
