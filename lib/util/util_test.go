package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitS3Path(t *testing.T) {
	bucket, key := SplitS3Path("my-bucket/Analysis/2024/file.json")
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "Analysis/2024/file.json", key)

	bucket, key = SplitS3Path("s3://my-bucket/file.json")
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "file.json", key)

	bucket, key = SplitS3Path("only-bucket")
	assert.Equal(t, "only-bucket", bucket)
	assert.Equal(t, "", key)
}

func TestSplitS3URI(t *testing.T) {
	bucket, key := SplitS3URI("https://s3.us-east-1.amazonaws.com/transcripts/abc123_agent.json")
	assert.Equal(t, "transcripts", bucket)
	assert.Equal(t, "abc123_agent.json", key)
}

func TestExpandDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	// Plain values pass through untouched.
	got, err := ExpandDate("Open", now)
	require.NoError(t, err)
	assert.Equal(t, "Open", got)

	got, err = ExpandDate("2h|date", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", got)

	got, err = ExpandDate("3d|datetime", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-13T09:30:00Z", got)

	got, err = ExpandDate("|time", now)
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", got)

	_, err = ExpandDate("2h|epoch", now)
	assert.Error(t, err)

	_, err = ExpandDate("2x|date", now)
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	nested := map[string]interface{}{
		"Id":   "001",
		"Name": "Case-1",
		"Owner": map[string]interface{}{
			"Name": "Agent Smith",
		},
		"Tags": []interface{}{"a", "b"},
	}

	flat := Flatten(nested)

	assert.Equal(t, "001", flat["Id"])
	assert.Equal(t, "Agent Smith", flat["Owner.Name"])
	// List elements collapse onto the same key, last one wins.
	assert.Equal(t, "b", flat["Tags"])
}

func TestBase64JSON(t *testing.T) {
	got, err := Base64JSON(map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "eyJrIjoidiJ9", got)
}
