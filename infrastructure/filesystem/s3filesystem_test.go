package filesystem

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryS3 struct {
	objects map[string][]byte
}

func (m *memoryS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*params.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(m.objects[*params.Key]))}, nil
}

func (m *memoryS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(params.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &memoryS3{objects: map[string][]byte{"other/x.csv": []byte("x")}}
	a := NewArchive(client, "exports", "timesheets/")

	key, err := a.Put(ctx, "approved-timesheets-2024-03-15.csv", "text/csv", []byte("Week,Year\n"))
	require.NoError(t, err)
	assert.Equal(t, "timesheets/approved-timesheets-2024-03-15.csv", key)

	keys, err := a.ListFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	var out bytes.Buffer
	require.NoError(t, a.ReadFile(ctx, key, &out))
	assert.Equal(t, "Week,Year\n", out.String())
}
