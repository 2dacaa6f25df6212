package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/pkg/api"
)

// fakeS3 хранит объекты в памяти и реализует только нужные методы
type fakeS3 struct {
	s3iface.S3API
	objects   map[string][]byte
	headErr   error
	listCalls []*s3.ListObjectsV2Input
	pageSize  int
	mu        sync.Mutex
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeS3) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, _ ...request.Option) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, in)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.StringValue(in.Prefix)) && k > aws.StringValue(in.StartAfter) {
			keys = append(keys, k)
		}
	}
	f.mu.Unlock()
	sort.Strings(keys)

	// Отдаем страницами, как настоящий S3
	for start := 0; start < len(keys) || start == 0; start += f.pageSize {
		end := min(start+f.pageSize, len(keys))
		page := &s3.ListObjectsV2Output{}
		for _, k := range keys[start:end] {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k)})
		}
		last := end >= len(keys)
		if !fn(page, last) || last {
			break
		}
	}
	return nil
}

func testItem(id string, ts int64) *api.SyncItem {
	return &api.SyncItem{
		ID:        id,
		Type:      "clipboard",
		Action:    "create",
		DeviceID:  "laptop-1",
		Payload:   []byte(`{"text":"` + id + `"}`),
		Timestamp: ts,
		Version:   1,
	}
}

func TestProvider_Initialize(t *testing.T) {
	fake := newFakeS3()
	p := NewWithClient(fake, "clipsync", "", nil)
	require.NoError(t, p.Initialize(context.Background()))

	fake.headErr = errors.New("AccessDenied")
	err := p.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, syncerr.IsKind(err, syncerr.ProviderUnavailable))
}

func TestProvider_SyncItem_Idempotent(t *testing.T) {
	fake := newFakeS3()
	p := NewWithClient(fake, "clipsync", "changes", nil)
	ctx := context.Background()

	item := testItem("x1", 1000)
	require.NoError(t, p.SyncItem(ctx, item))

	item.Version = 2
	require.NoError(t, p.SyncItem(ctx, item))

	require.Len(t, fake.objects, 1)
	assert.Contains(t, fake.objects, "changes/00000000000000001000-x1.json")
}

func TestProvider_PullChanges(t *testing.T) {
	fake := newFakeS3()
	p := NewWithClient(fake, "clipsync", "", nil)
	ctx := context.Background()

	for i, ts := range []int64{500, 1000, 1000, 1500, 99999999999} {
		require.NoError(t, p.SyncItem(ctx, testItem(fmt.Sprintf("item-%d", i), ts)))
	}

	tests := []struct {
		name  string
		since int64
		want  []string
	}{
		{name: "from start", since: 0, want: []string{"item-0", "item-1", "item-2", "item-3", "item-4"}},
		{name: "strictly after since", since: 1000, want: []string{"item-3", "item-4"}},
		{name: "between timestamps", since: 999, want: []string{"item-1", "item-2", "item-3", "item-4"}},
		{name: "nothing newer", since: 99999999999, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := p.PullChanges(ctx, tt.since)
			require.NoError(t, err)

			ids := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	last := fake.listCalls[len(fake.listCalls)-1]
	assert.Equal(t, "changes/", aws.StringValue(last.Prefix))
	assert.Equal(t, "changes/00000000099999999999.", aws.StringValue(last.StartAfter))
}

func TestProvider_PullChanges_CorruptObject(t *testing.T) {
	fake := newFakeS3()
	fake.objects["changes/00000000000000000001-bad.json"] = []byte("not json")
	p := NewWithClient(fake, "clipsync", "", nil)

	_, err := p.PullChanges(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode object")
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)

	p, err := New(Config{
		Bucket:         "clipsync",
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		AccessKey:      "minio",
		SecretKey:      "minio123",
		ForcePathStyle: true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, p.prefix)
	assert.NoError(t, p.Cleanup(context.Background()))
}
