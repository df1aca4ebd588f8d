package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScanValue(t *testing.T) {
	l := StringList{"#fff", "#000"}

	v, err := l.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, l, out)

	// nil list stores as SQL NULL and scans back as nil
	var empty StringList
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	out = StringList{"stale"}
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

func TestGradientListContainsSequence(t *testing.T) {
	l := GradientList{{"#fff", "#000"}, {"#111", "#222", "#333"}}

	assert.True(t, l.ContainsSequence([]string{"#fff", "#000"}))
	assert.True(t, l.ContainsSequence([]string{"#111", "#222", "#333"}))

	// order and length matter
	assert.False(t, l.ContainsSequence([]string{"#000", "#fff"}))
	assert.False(t, l.ContainsSequence([]string{"#fff"}))
	assert.False(t, l.ContainsSequence([]string{"#fff", "#000", "#000"}))
}

func TestStringListContains(t *testing.T) {
	l := StringList{"#abc"}

	assert.True(t, l.Contains("#abc"))
	assert.False(t, l.Contains("#ABC"))
	assert.False(t, StringList(nil).Contains("#abc"))
}
