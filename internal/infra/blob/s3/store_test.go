package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"latticegen/internal/blob/core"
)

func TestMockStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}
	info, err := s.Put(ctx, "runs/out.ctl", strings.NewReader("(set! geometry (list \n"), core.PutOptions{ContentType: "text/plain", Metadata: map[string]string{"pipeline": "embedded"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 22 || info.ETag == "" || info.URL != "s3://mock-bucket/runs/out.ctl" {
		t.Fatalf("info %+v", info)
	}
	if _, err := s.Put(ctx, "runs/out.ctl", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "runs/out.ctl")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "(set! geometry (list \n" || got.ContentType != "text/plain" {
		t.Fatalf("get %q %+v", b, got)
	}
	list, err := s.List(ctx, "runs/")
	if err != nil || len(list) != 1 || list[0].Key != "runs/out.ctl" {
		t.Fatalf("list %+v %v", list, err)
	}
	if ok, err := s.Delete(ctx, "runs/out.ctl"); err != nil || !ok {
		t.Fatalf("delete %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, "runs/out.ctl"); err != nil || ok {
		t.Fatalf("second delete %v %v", ok, err)
	}
	if _, err := s.Head(ctx, "runs/out.ctl"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrefixIsHiddenFromKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	s.prefix = "team/"
	if _, err := s.Put(ctx, "a.cell", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := s.List(ctx, "")
	if err != nil || len(list) != 1 || list[0].Key != "a.cell" {
		t.Fatalf("list %+v %v", list, err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
	t.Setenv("LATTICEGEN_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected env bucket error")
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{Bucket: "b", AccessKeyID: "id", SecretAccessKey: "secret", Endpoint: "http://localhost:9000", PathStyle: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.bucket != "b" {
		t.Fatalf("bucket = %s", s.bucket)
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	dec, ok := decodeAWSChunked([]byte("3\r\nabc\r\n2;chunk-signature=x\r\nde\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"))
	if !ok || string(dec) != "abcde" {
		t.Fatalf("decode = %q %v", dec, ok)
	}
	for _, bad := range []string{"plain body", "zz\r\nabc\r\n0\r\n", "5\r\nabc\r\n0\r\n"} {
		if _, ok := decodeAWSChunked([]byte(bad)); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestMockRejectsUnsupportedMethod(t *testing.T) {
	rt := &mockBucket{objects: make(map[string]mockObject)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}
