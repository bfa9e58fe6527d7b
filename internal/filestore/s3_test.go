package filestore

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/stretchr/testify/require"
)

func TestIsS3NotFound(t *testing.T) {
	missing := fmt.Errorf("get object failed, err:%w", awserr.New("NoSuchKey", "key missing", nil))
	require.True(t, isS3NotFound(missing))
	require.True(t, isS3NotFound(awserr.New("NotFound", "head says no", nil)))

	require.False(t, isS3NotFound(awserr.New("AccessDenied", "nope", nil)))
	require.False(t, isS3NotFound(fmt.Errorf("plain error")))
}

func TestS3StoreURL(t *testing.T) {
	store := &s3Store{
		prefix:    "novels",
		publicURL: "https://cdn.example.com",
	}
	require.Equal(t, "https://cdn.example.com/novels/media/key.png", store.URL("media/key.png", "ignored"))

	store = &s3Store{endpoint: "minio:9000", bucket: "webnovel", useSSL: false}
	require.Equal(t, "http://minio:9000/webnovel/media/key.png", store.URL("media/key.png", "ignored"))
}
