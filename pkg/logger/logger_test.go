package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestWithContext_AddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserEmailKey, "g@x.com")
	ctx = context.WithValue(ctx, ServiceKey, "stayvista")

	InfoContext(ctx, "hello")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"user_email":"g@x.com"`, `"service":"stayvista"`, `"msg":"hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
