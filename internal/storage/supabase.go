package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// Presigner issues signed upload URLs so clients can push training
// archives directly to object storage without routing bytes through us.
type Presigner struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewPresigner creates a Presigner against a Supabase storage endpoint.
func NewPresigner(supabaseURL, serviceKey, bucket string) *Presigner {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &Presigner{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// SignedUpload mints a fresh upload URL and the object key it is bound to.
func (p *Presigner) SignedUpload() (url string, key string, err error) {
	key = fmt.Sprintf("models/%d_%s.zip", time.Now().Unix(), uuid.NewString()[:8])

	resp, err := p.client.CreateSignedUploadUrl(p.bucket, key)
	if err != nil {
		return "", "", fmt.Errorf("create signed upload url: %w", err)
	}

	return p.baseURL + "/storage/v1" + resp.Url, key, nil
}

// PublicURL returns the public object URL for a stored key.
func (p *Presigner) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", p.baseURL, p.bucket, key)
}
