package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestAdapter(t *testing.T) (*Adapter, string) {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, GlobalFile, `{"sobjects":[{"name":"Account","label":"Account","createable":true}]}`)
	writeFixture(t, dir, "Account.json", `{"name":"Account","fields":[{"name":"Id","type":"id"},{"name":"Name","type":"string","length":255}]}`)
	writeFixture(t, dir, "Broken.json", `{"name":`)

	cfg, err := FromMap(map[string]any{"dir": dir})
	require.NoError(t, err)
	a, err := NewAdapter(cfg, zap.NewNop())
	require.NoError(t, err)
	return a, dir
}

func TestAdapter_DescribeGlobal(t *testing.T) {
	a, dir := newTestAdapter(t)

	objects, err := a.DescribeGlobal(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "Account", objects[0].Name)

	writeFixture(t, dir, GlobalFile, `[{"name":"Contact"}]`)
	objects, err = a.DescribeGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Contact", objects[0].Name)
}

func TestAdapter_Describe(t *testing.T) {
	a, _ := newTestAdapter(t)

	d, err := a.Describe(context.Background(), "Account")
	require.NoError(t, err)
	assert.Len(t, d.Fields, 2)

	_, err = a.Describe(context.Background(), "Missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = a.Describe(context.Background(), "Broken")
	assert.ErrorContains(t, err, "parse")

	_, err = a.Describe(context.Background(), "../etc/passwd")
	assert.ErrorContains(t, err, "invalid object name")
}

func TestAdapter_Identity(t *testing.T) {
	a, dir := newTestAdapter(t)
	assert.Equal(t, "file:"+filepath.Base(dir), a.OrgID())
	assert.Nil(t, a.LimitInfo())
	assert.NoError(t, a.Close())
}

func TestFactory(t *testing.T) {
	_, dir := newTestAdapter(t)

	conn, err := catalog.NewConnectionFactory(zap.NewNop()).NewConnection(context.Background(), AdapterType, map[string]any{"dir": dir, "org_id": "00Doffline"})
	require.NoError(t, err)
	assert.Equal(t, "00Doffline", conn.OrgID())

	_, err = FromMap(map[string]any{})
	assert.Error(t, err)

	_, err = NewAdapter(&Config{Dir: filepath.Join(dir, "nope")}, zap.NewNop())
	assert.Error(t, err)
}
