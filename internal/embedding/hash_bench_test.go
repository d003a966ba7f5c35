package embedding

import (
	"context"
	"testing"
)

func BenchmarkHashEmbedder_Embed(b *testing.B) {
	e := NewHashEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "Skills: Python, Docker, SQL Education: BSc Computer Science, 2020")
	}
}
